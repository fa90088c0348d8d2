package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/cli"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

// Select shows items as a 1-based numbered menu under title and asks until
// the operator enters a valid number. It returns the 0-based index.
// A closed or interrupted input is an ErrSelection.
func Select(ui cli.Ui, title string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, utils.Errorf(utils.ErrSelection, "", "nothing to choose from for %q", title)
	}

	ui.Output(Colorize(ui).Color("[bold]" + title))
	for i, item := range items {
		ui.Output(fmt.Sprintf("  %d) %s", i+1, item))
	}

	query := fmt.Sprintf("Choose [1-%d]:", len(items))
	for {
		answer, err := ui.Ask(query)
		if err != nil {
			return -1, utils.NewError(utils.ErrSelection, "", err)
		}

		n, convErr := strconv.Atoi(strings.TrimSpace(answer))
		if convErr != nil || n < 1 || n > len(items) {
			ui.Warn(fmt.Sprintf("%q is not a valid choice, enter a number between 1 and %d.", answer, len(items)))
			continue
		}

		klog.V(4).Infof("Selected %q for %q", items[n-1], title)
		return n - 1, nil
	}
}

// AskPath asks a free-text path question and returns the trimmed answer.
// Validation is left to the caller.
func AskPath(ui cli.Ui, query string) (string, error) {
	answer, err := ui.Ask(query)
	if err != nil {
		return "", utils.NewError(utils.ErrSelection, "", err)
	}
	return strings.TrimSpace(answer), nil
}
