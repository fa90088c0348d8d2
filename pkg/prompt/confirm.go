package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/cli"

	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

// Confirm asks a yes/no question that defaults to no. An empty answer or a
// closed input means no; anything unrecognized is asked again.
func Confirm(ui cli.Ui, question string) (bool, error) {
	for {
		answer, err := ui.Ask(question + " [y/N]")
		if err != nil {
			if errors.Is(err, io.EOF) {
				ui.Output("")
				return false, nil
			}
			return false, utils.NewError(utils.ErrSelection, "", err)
		}

		switch strings.TrimSpace(strings.ToLower(answer)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		default:
			ui.Output(fmt.Sprintf(`%q is not a valid response, please answer "yes" or "no".`, answer))
		}
	}
}
