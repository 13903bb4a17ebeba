package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/kuweni/kuweni-ai/internal/gen"
)

type fakeText struct {
	reply string
	err   error
	calls int
	// block, when non-nil, holds Generate until released
	block chan struct{}
	// started is signalled once per Generate entry when block is set
	started chan struct{}
	// hook runs mid-flight, before the reply is returned
	hook func()
}

func (f *fakeText) Generate(ctx context.Context, message, model string) (*gen.TextResult, error) {
	f.calls++
	if f.block != nil {
		f.started <- struct{}{}
		<-f.block
	}
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	if model == "" {
		model = "default"
	}
	return &gen.TextResult{Response: f.reply, Model: model}, nil
}

func TestSendMessage_AppendsUserAndAssistant(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store, &fakeText{reply: "hello!"})
	ctx := context.Background()

	sess, err := store.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	res, err := svc.SendMessage(ctx, sess.ID, "hi", "gpt-3.5-turbo")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if res.Reply != "hello!" {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}
	if res.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model: %q", res.Model)
	}

	msgs, err := store.Messages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "hi" {
		t.Fatalf("unexpected user msg: role=%q content=%q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "hello!" {
		t.Fatalf("unexpected assistant msg: role=%q content=%q", msgs[1].Role, msgs[1].Content)
	}

	got, err := store.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Title != "hi..." {
		t.Fatalf("title = %q, want %q", got.Title, "hi...")
	}
}

func TestSendMessage_UpstreamFailureBecomesTranscriptEntry(t *testing.T) {
	store := newTestStore(t)
	upstreamErr := &gen.UpstreamError{Status: 502, Body: "bad gateway"}
	svc := NewService(store, &fakeText{err: upstreamErr})
	ctx := context.Background()

	sess, err := store.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	_, err = svc.SendMessage(ctx, sess.ID, "hi", "")
	var ue *gen.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected upstream error to propagate, got %v", err)
	}

	// the user message sticks (optimistic append, no rollback) and the
	// failure is absorbed into the conversation
	msgs, err := store.Messages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser {
		t.Fatalf("first message should be the user's, got %q", msgs[0].Role)
	}
	if msgs[1].Role != RoleAssistant {
		t.Fatalf("second message should be the assistant's, got %q", msgs[1].Role)
	}
	want := "Sorry, I encountered an error: " + upstreamErr.Error() + ". Please try again."
	if msgs[1].Content != want {
		t.Fatalf("error entry = %q, want %q", msgs[1].Content, want)
	}
}

func TestSendMessage_EmptyMessageLeavesTranscriptUntouched(t *testing.T) {
	store := newTestStore(t)
	text := &fakeText{reply: "never"}
	svc := NewService(store, text)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	_, err = svc.SendMessage(ctx, sess.ID, "", "gpt-4")
	if !gen.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if text.calls != 0 {
		t.Fatalf("upstream must not be called for empty input, got %d calls", text.calls)
	}

	msgs, err := store.Messages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("rejected input must not mutate the transcript, got %d messages", len(msgs))
	}
	got, err := store.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Title != "New Chat" {
		t.Fatalf("title = %q, want %q", got.Title, "New Chat")
	}
}

func TestSendMessage_UnknownSession(t *testing.T) {
	store := newTestStore(t)
	text := &fakeText{reply: "never"}
	svc := NewService(store, text)

	if _, err := svc.SendMessage(context.Background(), "01NOSUCHSESSION0000000000", "hi", ""); err == nil {
		t.Fatalf("expected error for unknown session")
	}
	if text.calls != 0 {
		t.Fatalf("upstream must not be called for unknown session, got %d calls", text.calls)
	}
}

func TestSendMessage_SecondSendWhilePendingIsRejected(t *testing.T) {
	store := newTestStore(t)
	text := &fakeText{
		reply:   "done",
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	svc := NewService(store, text)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.SendMessage(ctx, sess.ID, "first", "")
		firstDone <- err
	}()
	<-text.started

	if _, err := svc.SendMessage(ctx, sess.ID, "second", ""); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(text.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first send: %v", err)
	}

	// the session accepts sends again once the first completes
	text.block = nil
	if _, err := svc.SendMessage(ctx, sess.ID, "third", ""); err != nil {
		t.Fatalf("send after release: %v", err)
	}
}

func TestSendMessage_ReplyDroppedWhenSessionDeletedMidFlight(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	text := &fakeText{reply: "too late"}
	text.hook = func() {
		if err := store.DeleteSession(ctx, sess.ID); err != nil {
			t.Errorf("delete session mid-flight: %v", err)
		}
	}
	svc := NewService(store, text)

	res, err := svc.SendMessage(ctx, sess.ID, "hi", "")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if res.Assistant != nil {
		t.Fatalf("assistant reply must be dropped for a deleted session")
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("deleted session resurrected: %d sessions", len(sessions))
	}
}
