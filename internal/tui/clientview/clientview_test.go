// ABOUTME: Tests for the OAuth client detail screen
// ABOUTME: Validates record rendering, load errors and action messages

package clientview

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/centralauth-console/internal/client"
)

func loadedDetail(t *testing.T, rec *client.ClientDetail, err error) *Detail {
	t.Helper()
	d := New(7, func(_ context.Context, id int64) (*client.ClientDetail, error) {
		if id != 7 {
			t.Errorf("expected id 7, got %d", id)
		}
		return rec, err
	}, 120)
	d.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	d.Update(d.fetch()())
	return d
}

func confidential() *client.ClientDetail {
	return &client.ClientDetail{OAuthClient: client.OAuthClient{
		ID: 7, ClientID: "cid-7", Name: "Portal", Description: "customer portal",
		RedirectURI: "https://portal.example.com/cb",
		CreatedAt:   time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}}
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestDetailView(t *testing.T) {
	d := loadedDetail(t, confidential(), nil)
	view := d.View()

	for _, want := range []string{"Portal", "customer portal", "cid-7", "https://portal.example.com/cb", "Confidential", "Client Security"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	// The panel wraps long lines, so check the secret hint before layout
	security := d.viewSecurity(confidential().OAuthClient)
	if !strings.Contains(security, "Keep it secure.") {
		t.Errorf("expected secret hint for a confidential client, got %q", security)
	}

	pub := confidential().OAuthClient
	pub.IsPublic = true
	if strings.Contains(d.viewSecurity(pub), "Keep it secure.") {
		t.Error("public clients have no secret hint")
	}
}

func TestDetailActions(t *testing.T) {
	d := loadedDetail(t, confidential(), nil)

	if _, ok := mustMsg(t, d, 'e').(EditMsg); !ok {
		t.Error("expected EditMsg")
	}
	if _, ok := mustMsg(t, d, 's').(RegenerateMsg); !ok {
		t.Error("expected RegenerateMsg")
	}
	if _, ok := mustMsg(t, d, 'd').(DeleteMsg); !ok {
		t.Error("expected DeleteMsg")
	}
	if msg, ok := mustMsg(t, d, 'i').(CopyMsg); !ok || msg.Text != "cid-7" || msg.What != "Client ID" {
		t.Errorf("unexpected copy message %#v", msg)
	}
	if _, ok := mustMsg(t, d, 'b').(BackMsg); !ok {
		t.Error("expected BackMsg")
	}
}

func mustMsg(t *testing.T, d *Detail, r rune) tea.Msg {
	t.Helper()
	_, cmd := d.Update(key(r))
	if cmd == nil {
		t.Fatalf("expected command for %q", r)
	}
	return cmd()
}

func TestPublicClientHasNoRegenerate(t *testing.T) {
	rec := confidential()
	rec.IsPublic = true
	d := loadedDetail(t, rec, nil)

	if _, cmd := d.Update(key('s')); cmd != nil {
		t.Error("public clients cannot regenerate a secret")
	}
	if !strings.Contains(d.View(), "do not use client secrets") {
		t.Error("expected public client description")
	}
}

func TestDetailLoadErrors(t *testing.T) {
	d := loadedDetail(t, nil, &client.APIError{Status: 404, Code: client.CodeNotFound, Message: "Client not found"})
	if !strings.Contains(d.View(), MsgNotFound) {
		t.Error("expected not-found text")
	}
	if _, cmd := d.Update(key('e')); cmd != nil {
		t.Error("no actions without a record")
	}

	d = loadedDetail(t, nil, errors.New("dial tcp: refused"))
	view := d.View()
	if !strings.Contains(view, MsgLoadFailed) || strings.Contains(view, "refused") {
		t.Errorf("unexpected load error view %q", view)
	}
}

func TestSetRecord(t *testing.T) {
	d := loadedDetail(t, confidential(), nil)
	c, _ := d.Record()
	c.Name = "Renamed"
	d.SetRecord(c)

	if got, _ := d.Record(); got.Name != "Renamed" {
		t.Errorf("expected renamed record, got %q", got.Name)
	}
}
