package wizard

import "testing"

func TestManager_SessionLifecycle(t *testing.T) {
	m := NewManager(&mockDealSaver{}, testLogger())

	token, w := m.Open()
	if token == "" || w == nil {
		t.Fatal("Open() should return a token and a wizard")
	}
	if w.Step() != StepCustomer {
		t.Errorf("new session step = %d, want %d", w.Step(), StepCustomer)
	}

	got, ok := m.Get(token)
	if !ok || got != w {
		t.Error("Get() should return the opened session")
	}

	other, _ := m.Open()
	if other == token {
		t.Error("each session needs a distinct token")
	}

	m.Close(token)
	if _, ok := m.Get(token); ok {
		t.Error("closed session should be gone")
	}
	if _, ok := m.Get(other); !ok {
		t.Error("closing one session must not touch another")
	}
}

func TestManager_GetUnknownToken(t *testing.T) {
	m := NewManager(&mockDealSaver{}, testLogger())

	if _, ok := m.Get("nope"); ok {
		t.Error("unknown token should not resolve")
	}
}
