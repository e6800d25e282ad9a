package engine

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/warpboard/internal/dom"
)

const confirmPage = `<html><body>
<ul>
  <li>BTC above 40000 <button id="del42" data-try-delete-id="42"><span id="icon42">x</span></button></li>
  <li>ETH below 1000 <button id="del43" data-try-delete-id="43">x</button></li>
</ul>
<div id="confirm" class="modal" data-confirm-delete-modal hidden>
  <p>Delete this alert?</p>
  <button id="yes" data-confirm>Delete</button>
  <button id="no" data-cancel>Cancel</button>
</div>
<div id="confirm-footer" class="modal" data-confirm-delete-modal hidden>
  <button id="yes-footer" data-confirm>Delete</button>
</div>
<div id="help" class="modal">
  <p>Help</p>
  <button id="close-help" data-cancel>Close</button>
</div>
</body></html>`

func modalState(t *testing.T, p *Page, selector string) ModalState {
	t.Helper()
	container := el(t, p, selector)
	var s ModalState
	p.Do(func(*dom.Document) {
		if m := p.Modal(container); m != nil {
			s = m.State()
		}
	})
	return s
}

func hidden(t *testing.T, p *Page, selector string) bool {
	t.Helper()
	_, ok := attr(t, p, selector, "hidden")
	return ok
}

func TestConfirmDeletesOnce(t *testing.T) {
	p, req, nav := testPage(t, confirmPage)

	click(t, p, "#icon42")
	if hidden(t, p, "#confirm") || hidden(t, p, "#confirm-footer") {
		t.Fatal("every confirmation modal should be shown")
	}
	for _, sel := range []string{"#yes", "#yes-footer"} {
		if id, _ := attr(t, p, sel, "data-delete-id"); id != "42" {
			t.Errorf("%s data-delete-id = %q, want 42", sel, id)
		}
	}
	if s := modalState(t, p, "#confirm"); s != ModalPending {
		t.Fatalf("state = %s, want pending", s)
	}
	if len(req.Calls()) != 0 {
		t.Fatal("opening the modal must not issue requests")
	}

	click(t, p, "#yes")
	p.Settle()

	want := []call{{Method: http.MethodDelete, Path: "/alert/42"}}
	if diff := cmp.Diff(want, req.Calls()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if nav.Reloads() != 1 {
		t.Errorf("reloads = %d, want 1", nav.Reloads())
	}
	if s := modalState(t, p, "#confirm"); s != ModalCompleting {
		t.Errorf("state = %s, want completing", s)
	}
}

func TestConfirmCancelIssuesNothing(t *testing.T) {
	p, req, nav := testPage(t, confirmPage)

	click(t, p, "#del43")
	click(t, p, "#no")
	p.Settle()

	if len(req.Calls()) != 0 {
		t.Errorf("cancel issued requests: %v", req.Calls())
	}
	if nav.Reloads() != 0 {
		t.Error("cancel reloaded the page")
	}
	if !hidden(t, p, "#confirm") {
		t.Error("cancel should hide its modal")
	}
	if hidden(t, p, "#confirm-footer") {
		t.Error("cancel must only hide the modal it sits in")
	}
	if s := modalState(t, p, "#confirm"); s != ModalIdle {
		t.Errorf("state = %s, want idle", s)
	}

	// Confirming a modal that was dismissed does nothing.
	click(t, p, "#yes")
	p.Settle()
	if len(req.Calls()) != 0 {
		t.Errorf("confirm on idle modal issued requests: %v", req.Calls())
	}
}

func TestConfirmUsesLatestTrigger(t *testing.T) {
	p, req, _ := testPage(t, confirmPage)

	click(t, p, "#del42")
	click(t, p, "#del43")
	click(t, p, "#yes-footer")
	p.Settle()

	want := []call{{Method: http.MethodDelete, Path: "/alert/43"}}
	if diff := cmp.Diff(want, req.Calls()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestConfirmFailureIsSilent(t *testing.T) {
	p, req, nav := testPage(t, confirmPage)
	req.status = http.StatusInternalServerError

	click(t, p, "#del42")
	click(t, p, "#yes")
	p.Settle()

	if nav.Reloads() != 0 {
		t.Error("failed delete must not reload")
	}
	if hidden(t, p, "#confirm") {
		t.Error("modal should stay visible after a failed delete")
	}
	if s := modalState(t, p, "#confirm"); s != ModalCompleting {
		t.Errorf("state = %s, want completing", s)
	}

	// No second request while completing.
	click(t, p, "#yes")
	p.Settle()
	if n := len(req.Calls()); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}

	// Cancel still dismisses it.
	click(t, p, "#no")
	if s := modalState(t, p, "#confirm"); s != ModalIdle {
		t.Errorf("state after cancel = %s, want idle", s)
	}
}

func TestConfirmTransportError(t *testing.T) {
	p, req, nav := testPage(t, confirmPage)
	req.err = errNetwork

	click(t, p, "#del42")
	click(t, p, "#yes")
	p.Settle()

	if nav.Reloads() != 0 {
		t.Error("transport error must not reload")
	}
}

func TestCancelPlainModal(t *testing.T) {
	p, _, _ := testPage(t, confirmPage)
	click(t, p, "#close-help")
	if !hidden(t, p, "#help") {
		t.Error("cancel should hide a plain modal")
	}
}

func TestDirectDeleteWithoutModal(t *testing.T) {
	p, req, nav := testPage(t, `<html><body>
		<button id="a" data-try-delete-id="5">x</button>
		<button id="b" data-delete-id="6" data-try-delete-id="6">x</button>
	</body></html>`)

	click(t, p, "#a")
	p.Settle()
	click(t, p, "#b")
	p.Settle()

	want := []call{
		{Method: http.MethodDelete, Path: "/alert/5"},
		{Method: http.MethodDelete, Path: "/alert/6"},
	}
	if diff := cmp.Diff(want, req.Calls()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if nav.Reloads() != 2 {
		t.Errorf("reloads = %d, want 2", nav.Reloads())
	}
}

func TestBothPatternsUseConfirmation(t *testing.T) {
	p, req, _ := testPage(t, `<html><body>
		<button id="direct" data-delete-id="8">x</button>
		<div id="m" class="modal" data-confirm-delete-modal hidden>
			<button id="ok" data-confirm>Delete</button>
		</div>
	</body></html>`)

	click(t, p, "#direct")
	p.Settle()
	if len(req.Calls()) != 0 {
		t.Fatalf("direct control deleted without confirmation: %v", req.Calls())
	}
	if hidden(t, p, "#m") {
		t.Fatal("modal should open")
	}

	click(t, p, "#ok")
	p.Settle()
	want := []call{{Method: http.MethodDelete, Path: "/alert/8"}}
	if diff := cmp.Diff(want, req.Calls()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestModalTracksTarget(t *testing.T) {
	p, _, _ := testPage(t, confirmPage)
	container := el(t, p, "#confirm")
	target := func() string {
		var id string
		p.Do(func(*dom.Document) {
			if m := p.Modal(container); m != nil {
				id = m.Target()
			}
		})
		return id
	}

	click(t, p, "#del42")
	if got := target(); got != "42" {
		t.Errorf("target = %q, want 42", got)
	}
	click(t, p, "#del43")
	if got := target(); got != "43" {
		t.Errorf("target = %q, want latest trigger 43", got)
	}
	click(t, p, "#no")
	if got := target(); got != "" {
		t.Errorf("target after cancel = %q, want empty", got)
	}
}
