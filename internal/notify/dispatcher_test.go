package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
)

type fakeChannel struct {
	name     string
	fail     bool
	sent     int
	notified int
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(ctx context.Context, matches []model.Match) error {
	if f.fail {
		return errors.New("transport down")
	}
	f.sent++
	return nil
}

func (f *fakeChannel) Notify(ctx context.Context, subject, text string) error {
	if f.fail {
		return errors.New("transport down")
	}
	f.notified++
	return nil
}

func TestDispatcher_ChannelIsolation(t *testing.T) {
	// The mail transport fails on every call; the others must still
	// attempt and complete delivery
	email := &fakeChannel{name: "email", fail: true}
	telegram := &fakeChannel{name: "telegram"}
	discord := &fakeChannel{name: "discord"}

	d := NewDispatcher(email, telegram, discord)
	matches := []model.Match{TestMatch(time.Now())}

	sent := d.Dispatch(context.Background(), matches)

	if len(sent) != 2 {
		t.Fatalf("Dispatch() delivered via %v, want 2 channels", sent)
	}
	if telegram.sent != 1 || discord.sent != 1 {
		t.Error("surviving channels should each have sent once")
	}
	if email.sent != 0 {
		t.Error("failing channel should not count as sent")
	}
}

func TestDispatcher_AllChannelsFail(t *testing.T) {
	d := NewDispatcher(
		&fakeChannel{name: "email", fail: true},
		&fakeChannel{name: "telegram", fail: true},
	)

	sent := d.Dispatch(context.Background(), []model.Match{TestMatch(time.Now())})
	if len(sent) != 0 {
		t.Errorf("Dispatch() = %v, want no deliveries", sent)
	}
}

func TestDispatcher_SendTest(t *testing.T) {
	email := &fakeChannel{name: "email"}
	telegram := &fakeChannel{name: "telegram"}
	d := NewDispatcher(email, telegram)

	sent := d.SendTest(context.Background(), "telegram")
	if len(sent) != 1 || sent[0] != "telegram" {
		t.Fatalf("SendTest(telegram) = %v, want just telegram", sent)
	}
	if email.sent != 0 {
		t.Error("unselected channel should not send")
	}

	sent = d.SendTest(context.Background(), "all")
	if len(sent) != 2 {
		t.Errorf("SendTest(all) = %v, want both channels", sent)
	}
}

func TestDispatcher_ReportFailure(t *testing.T) {
	broken := &fakeChannel{name: "email", fail: true}
	working := &fakeChannel{name: "discord"}
	d := NewDispatcher(broken, working)

	d.ReportFailure(context.Background(), "🚨 Reddit Monitor Error", "r/glasgow unreachable")

	if working.notified != 1 {
		t.Error("failure report should reach the surviving channel")
	}
}
