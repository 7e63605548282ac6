package locator

import (
	"fmt"
	"strings"

	"github.com/temirov/patcher/internal/fsops"
)

const (
	notFoundMessageFormat = "Your %s installation could not be located."
	requestPathFormat     = "Please enter the path where you have %s installed: "
	promptErrorFormat     = "read installation path: %w"
)

// Prompter asks the operator a question and returns the answer.
type Prompter interface {
	Prompt(question ...string) (string, error)
}

// Locator resolves the installation directory. Only existence is checked;
// the directory's contents are never inspected.
type Locator struct {
	FS               fsops.FS
	Prompter         Prompter
	ProductName      string
	DefaultDirectory string
}

// Locate returns DefaultDirectory when it exists, otherwise keeps asking
// until an existing directory is entered or the prompter fails.
func (l Locator) Locate() (string, error) {
	ops := fsops.NewOps(l.FS)
	candidate := strings.TrimSpace(l.DefaultDirectory)
	for candidate == "" || !ops.DirExists(candidate) {
		answer, err := l.Prompter.Prompt(
			fmt.Sprintf(notFoundMessageFormat, l.ProductName),
			fmt.Sprintf(requestPathFormat, l.ProductName),
		)
		if err != nil {
			return "", fmt.Errorf(promptErrorFormat, err)
		}
		candidate = strings.Trim(strings.TrimSpace(answer), `"`)
	}
	return candidate, nil
}
