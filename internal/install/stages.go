package install

import (
	"fmt"

	"github.com/temirov/patcher/internal/pipeline"
)

const (
	StageFetch    = "fetch"
	StagePatch    = "patch"
	StageCleanup  = "cleanup"
	StageRelocate = "relocate-readme"

	fetchStartMessage       = "Downloading patch, please wait..."
	fetchProblem            = "Patch Download Error: could not download patch."
	fetchNetworkCause       = "There may be something in your network that is interfering with the download."
	fetchQuotaCauseFormat   = "Google Drive may have limited download hits on the patch. Where the patch is stored online will need to be revisited by the %s."
	patchStartFormat        = "Patching %s, please wait..."
	patchSuccessMessage     = "Successfully patched!"
	patchProblem            = "Unzip Patch Error: Could not patch your game."
	patchRunningCauseFormat = "Make sure %s is not running while attempting to use the patcher."
	privilegesCauseFormat   = "The patcher may not have privileges to modify files in the %s installation folder. Perhaps run it as an administrator."
	diskSpaceCause          = "Unlikely, but you may not have enough space on your disk drive."
	cleanupProblem          = "Cleanup Patch Error: Could not remove leftover patch files."
	otherProgramCauseFormat = "Unlikely, but another program could be trying to modify the %s installation folder."
	relocateProblem         = "Make Readme Available Error: Could not move the patch readme to your desktop."
	relocateFooterFormat    = "It should still be available in the %s installation directory."
	relocateSuccessMessage  = "Check your desktop for the patch's readme."
	relocateNameFormat      = "It is called %s"
	defaultMaintainer       = "patch maintainers"
)

// Stages returns the install pipeline in execution order: fetch, extract and
// merge, cleanup, readme relocation.
func (i Installer) Stages() []pipeline.Stage {
	name := i.Product.Name
	privileges := fmt.Sprintf(privilegesCauseFormat, name)
	otherProgram := fmt.Sprintf(otherProgramCauseFormat, name)
	maintainer := i.Product.Maintainer
	if maintainer == "" {
		maintainer = defaultMaintainer
	}

	return []pipeline.Stage{
		{
			Name:          StageFetch,
			Action:        i.Fetch,
			StartMessages: []string{fetchStartMessage},
			Problem:       fetchProblem,
			Causes: []string{
				fetchNetworkCause,
				fmt.Sprintf(fetchQuotaCauseFormat, maintainer),
			},
			PauseOnFailure: true,
		},
		{
			Name:            StagePatch,
			Action:          i.ExtractAndMerge,
			StartMessages:   []string{fmt.Sprintf(patchStartFormat, name)},
			SuccessMessages: []string{patchSuccessMessage},
			Problem:         patchProblem,
			Causes: []string{
				fmt.Sprintf(patchRunningCauseFormat, name),
				privileges,
				diskSpaceCause,
			},
			PauseOnFailure: true,
		},
		{
			Name:           StageCleanup,
			Action:         i.Cleanup,
			Problem:        cleanupProblem,
			Causes:         []string{privileges, otherProgram},
			PauseOnFailure: true,
		},
		{
			Name:   StageRelocate,
			Action: i.RelocateReadme,
			SuccessMessages: []string{
				relocateSuccessMessage,
				fmt.Sprintf(relocateNameFormat, i.Layout.ReadmeName),
			},
			Problem: relocateProblem,
			Causes:  []string{privileges, otherProgram},
			Footer:  fmt.Sprintf(relocateFooterFormat, name),
		},
	}
}
