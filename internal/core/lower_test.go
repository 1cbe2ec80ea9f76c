package core

import "testing"

func lower(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Lower(Tokenize([]byte(src)))
	if err != nil {
		t.Fatalf("Lower(%q): %v", src, err)
	}
	return prog
}

func TestTokenizeIgnoresComments(t *testing.T) {
	toks := Tokenize([]byte("foo>bar<\nbaz"))
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(toks), toks)
	}
	if toks[0].Kind != TokShiftRight || toks[1].Kind != TokShiftLeft {
		t.Fatalf("unexpected token kinds: %+v", toks)
	}
}

func TestTokenizeHandlesFullByteRange(t *testing.T) {
	src := make([]byte, 256)
	for i := range src {
		src[i] = byte(i)
	}
	toks := Tokenize(src)
	if len(toks) != 8 {
		t.Fatalf("got %d tokens, want 8 (one per primitive byte): %+v", len(toks), toks)
	}
}

func TestLowerFoldsRuns(t *testing.T) {
	prog := lower(t, ">>>+++---<")
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}
	ops := prog.Functions[0].Ops
	want := []Op{
		{Kind: OpMove, Arg: 3},
		{Kind: OpUpdateCell, Arg: 0},
		{Kind: OpMove, Arg: -1},
	}
	if len(ops) != len(want) {
		t.Fatalf("got %d ops, want %d: %+v", len(ops), len(want), ops)
	}
	for i := range want {
		if ops[i].Kind != want[i].Kind || ops[i].Arg != want[i].Arg {
			t.Errorf("op %d: got %+v, want %+v", i, ops[i], want[i])
		}
	}
}

func TestLowerFunctionPartition(t *testing.T) {
	prog := lower(t, "+/-/@")
	if len(prog.Functions) != 3 {
		t.Fatalf("got %d functions, want 3", len(prog.Functions))
	}
	if len(prog.Functions[0].Ops) != 1 || prog.Functions[0].Ops[0].Kind != OpUpdateCell {
		t.Errorf("function 0: got %+v", prog.Functions[0].Ops)
	}
	if len(prog.Functions[2].Ops) != 1 || prog.Functions[2].Ops[0].Kind != OpInvoke {
		t.Errorf("function 2: got %+v", prog.Functions[2].Ops)
	}
}

func TestLowerTrailingSlashYieldsEmptyFunction(t *testing.T) {
	prog := lower(t, "+/")
	if len(prog.Functions) != 2 {
		t.Fatalf("got %d functions, want 2", len(prog.Functions))
	}
	if len(prog.Functions[1].Ops) != 0 {
		t.Errorf("trailing function: got %+v, want empty", prog.Functions[1].Ops)
	}
}

func TestLowerEmptyInputYieldsOneEmptyFunction(t *testing.T) {
	prog := lower(t, "")
	if len(prog.Functions) != 1 || len(prog.Functions[0].Ops) != 0 {
		t.Fatalf("got %+v, want one empty function", prog.Functions)
	}
}

func TestMainIDIsLastFunction(t *testing.T) {
	prog := lower(t, "+/-/.")
	if got, want := prog.MainID(), uint32(2); got != want {
		t.Errorf("MainID() = %d, want %d", got, want)
	}
}

func TestLowerRejectsTooManyFunctions(t *testing.T) {
	src := ""
	for i := 0; i < MaxFunctions+1; i++ {
		src += "/"
	}
	if _, err := Lower(Tokenize([]byte(src))); err == nil {
		t.Fatal("expected an error for a program exceeding MaxFunctions")
	}
}
