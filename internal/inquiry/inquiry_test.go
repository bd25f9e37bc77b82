package inquiry

import (
	"context"
	"errors"
	"testing"
	"time"

	"freshport.io/internal/stream"
)

func newTestService(t *testing.T) (*Service, *stream.Stream) {
	t.Helper()
	st := stream.New()
	svc, err := NewService(NewMemoryStore(), st)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, st
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"new", "read", "replied", "resolved", "archived"} {
		if _, err := ParseStatus(raw); err != nil {
			t.Fatalf("ParseStatus(%q): %v", raw, err)
		}
	}
	if got, err := ParseStatus("  Read "); err != nil || got != StatusRead {
		t.Fatalf("ParseStatus with whitespace/case: got %q, %v", got, err)
	}
	if _, err := ParseStatus("spam"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitValidatesAndNormalizes(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []Submission{
		{Email: "buyer@example.com", Message: "hi"},
		{Name: "Buyer", Message: "hi"},
		{Name: "Buyer", Email: "not-an-email", Message: "hi"},
		{Name: "Buyer", Email: "buyer@example.com"},
	}
	for i, sub := range cases {
		if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	inq, err := svc.Submit(context.Background(), Submission{
		Name:    "  Buyer  ",
		Email:   " Buyer@Example.COM ",
		Message: " need 3 pallets of limes ",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if inq.Name != "Buyer" || inq.Email != "buyer@example.com" || inq.Message != "need 3 pallets of limes" {
		t.Fatalf("fields not normalized: %+v", inq)
	}
	if inq.Status != StatusNew {
		t.Fatalf("status = %q, want %q", inq.Status, StatusNew)
	}
}

func TestSubmitPublishesEvent(t *testing.T) {
	svc, st := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := st.Subscribe(ctx)

	inq, err := svc.Submit(context.Background(), Submission{
		Name:    "Buyer",
		Email:   "buyer@example.com",
		Company: "Fruta SA",
		Message: "hello",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case evt := <-events:
		if evt.InquiryID != inq.ID || evt.Company != "Fruta SA" || evt.Status != string(StatusNew) {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestStatusLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	inq, err := svc.Submit(context.Background(), Submission{Name: "Buyer", Email: "b@example.com", Message: "hi"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	read, err := svc.MarkRead(context.Background(), inq.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if read.Status != StatusRead {
		t.Fatalf("status = %q, want %q", read.Status, StatusRead)
	}

	resolved, err := svc.SetStatus(context.Background(), inq.ID, StatusResolved)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if resolved.Status != StatusResolved {
		t.Fatalf("status = %q, want %q", resolved.Status, StatusResolved)
	}

	if _, err := svc.SetStatus(context.Background(), inq.ID, Status("junk")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), "missing", StatusRead); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newTestService(t)
	first, _ := svc.Submit(context.Background(), Submission{Name: "A", Email: "a@example.com", Message: "one"})
	second, _ := svc.Submit(context.Background(), Submission{Name: "B", Email: "b@example.com", Message: "two"})
	if _, err := svc.MarkRead(context.Background(), first.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	fresh, err := svc.List(context.Background(), StatusNew)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fresh) != 1 || fresh[0].ID != second.ID {
		t.Fatalf("expected only the unread inquiry, got %+v", fresh)
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 inquiries, got %d", len(all))
	}
	// newest first
	if all[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	inq, _ := svc.Submit(context.Background(), Submission{Name: "A", Email: "a@example.com", Message: "one"})
	if err := svc.Delete(context.Background(), inq.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), inq.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
