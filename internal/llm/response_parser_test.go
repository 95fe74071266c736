package llm

import (
	"errors"
	"testing"
)

type planReply struct {
	Response  string `json:"response"`
	ToolCalls []struct {
		Tool string `json:"tool"`
	} `json:"tool_calls"`
}

func TestDecodeObjectPlain(t *testing.T) {
	var reply planReply
	err := DecodeObject(`{"response":"ok","tool_calls":[{"tool":"web_search"}]}`, &reply)
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if reply.Response != "ok" || len(reply.ToolCalls) != 1 {
		t.Errorf("unexpected decode: %+v", reply)
	}
}

func TestDecodeObjectCodeFence(t *testing.T) {
	var reply planReply
	input := "```json\n{\"response\":\"fenced\"}\n```"
	if err := DecodeObject(input, &reply); err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if reply.Response != "fenced" {
		t.Errorf("expected fenced, got %q", reply.Response)
	}
}

func TestDecodeObjectEmbeddedProse(t *testing.T) {
	var reply planReply
	input := `Sure! Here is the plan you asked for: {"response":"embedded"} hope that helps.`
	if err := DecodeObject(input, &reply); err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if reply.Response != "embedded" {
		t.Errorf("expected embedded, got %q", reply.Response)
	}
}

func TestDecodeObjectGarbage(t *testing.T) {
	var reply planReply
	err := DecodeObject("no json here at all", &reply)
	if err == nil {
		t.Fatal("expected error for garbage input")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected ParseError, got %T", err)
	}
}

func TestDecodeArray(t *testing.T) {
	items, err := DecodeArray[string](`The options are: ["a","b"]`)
	if err != nil {
		t.Fatalf("DecodeArray: %v", err)
	}
	if len(items) != 2 || items[0] != "a" {
		t.Errorf("unexpected items: %v", items)
	}
}

func TestTruncateToTokens(t *testing.T) {
	text := "short text"
	if got := TruncateToTokens(text, 1000); got != text {
		t.Errorf("short text should be untouched, got %q", got)
	}
	long := ""
	for i := 0; i < 2000; i++ {
		long += "word "
	}
	cut := TruncateToTokens(long, 50)
	if len(cut) >= len(long) {
		t.Error("long text should have been truncated")
	}
	if CountTokens(cut) > 60 {
		t.Errorf("truncated text still too large: %d tokens", CountTokens(cut))
	}
}
