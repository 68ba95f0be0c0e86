// ABOUTME: Test to verify header/footer width alignment
// ABOUTME: Ensures frame renders at correct terminal width

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestFrameAlignment(t *testing.T) {
	widths := []int{60, 80, 100, 120}

	for _, signedIn := range []bool{false, true} {
		for _, targetWidth := range widths {
			t.Run(fmt.Sprintf("%d/signedIn=%v", targetWidth, signedIn), func(t *testing.T) {
				app, _, _ := newTestApp(t, &stubAPI{}, signedIn)

				model, _ := app.Update(tea.WindowSizeMsg{Width: targetWidth, Height: 30})
				app = model.(*App)

				view := app.View()

				lines := strings.Split(view, "\n")
				headerFound := false
				footerFound := false

				// Frame uses width-1 to prevent wrapping on some terminals,
				// but clamps to minimum of 80 for usability
				expectedWidth := max(targetWidth-1, 80)

				for _, line := range lines {
					if strings.HasPrefix(line, "╭─") {
						headerFound = true
						if w := lipgloss.Width(line); w != expectedWidth {
							t.Errorf("Header width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
							t.Logf("Header line: %q", line)
						}
					}

					if strings.HasPrefix(line, "╰─") {
						footerFound = true
						if w := lipgloss.Width(line); w != expectedWidth {
							t.Errorf("Footer width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
							t.Logf("Footer line: %q", line)
						}
					}
				}

				if !headerFound {
					t.Error("Header not found in output")
				}
				if !footerFound {
					t.Error("Footer not found in output")
				}
			})
		}
	}
}
