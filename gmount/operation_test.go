package gmount

import "testing"

func TestNewDefaultsToPasswordSaveNever(t *testing.T) {
	op := New()
	if op.PasswordSave() != PasswordSaveNever {
		t.Errorf("expected PasswordSaveNever, got %v", op.PasswordSave())
	}
}

func TestRequestPasswordUnhandledWithoutHook(t *testing.T) {
	op := New()
	if r := op.RequestPassword("enter password", "", "", AskPasswordNeedPassword); r != ResultUnhandled {
		t.Errorf("expected ResultUnhandled, got %v", r)
	}
}

func TestRequestPasswordInvokesHook(t *testing.T) {
	op := New()
	op.AskPassword = func(o *Operation, message, defaultUser, defaultDomain string, flags AskPasswordFlags) Result {
		o.SetUsername("alice")
		o.SetPassword("hunter2")

		return ResultHandled
	}

	if r := op.RequestPassword("enter password", "", "", AskPasswordNeedPassword); r != ResultHandled {
		t.Errorf("expected ResultHandled, got %v", r)
	}
	if op.Username() != "alice" || op.Password() != "hunter2" {
		t.Errorf("expected hook to set credentials, got username=%q password=%q", op.Username(), op.Password())
	}
}

func TestAbortInvokesHook(t *testing.T) {
	op := New()
	var aborted bool
	op.Aborted = func(*Operation) { aborted = true }

	op.Abort()
	if !aborted {
		t.Error("expected Aborted hook to run")
	}
}

func TestAbortWithoutHookIsNoop(t *testing.T) {
	op := New()
	op.Abort()
}
