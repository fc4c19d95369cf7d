package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// canvasExts are the file extensions a canvas argument can take, without dots.
var canvasExts = []string{"png", "jpg", "jpeg", "bmp", "tif", "tiff", "gif", "webp", "npy"}

// canvasCommands take canvas file paths as positional arguments.
var canvasCommands = map[string]bool{
	"sort": true, "encode": true, "decode": true, "verify": true,
	"score": true, "shuffle": true, "fill-mask": true,
}

var flagValues = map[string][]string{
	"mode":        {"uniform\tplain neighborhood average", "weighted\t1/(d²+1) weighted sum"},
	"color-space": {"lab\tpacked CIE Lab (uint16)", "rgb\tlinear RGB (float32)"},
}

// registerCompletions attaches value completion for the enumerated flags and
// restricts positional arguments of canvas commands to canvas files.
func registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		for name, values := range flagValues {
			if cmd.Flags().Lookup(name) == nil {
				continue
			}
			_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		}
		if cmd.Flags().Lookup("config") != nil {
			_ = cmd.RegisterFlagCompletionFunc("config", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
				return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
			})
		}
		if canvasCommands[cmd.Name()] {
			cmd.ValidArgsFunction = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
				return canvasExts, cobra.ShellCompDirectiveFilterFileExt
			}
		}
	}
}

func (c *CLI) completionCommand() *cobra.Command {
	shells := []string{"bash", "zsh", "fish", "powershell"}
	return &cobra.Command{
		Use:   "completion [" + strings.Join(shells, "|") + "]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for swapsort. Besides subcommands and
flags it completes --mode and --color-space values and offers only image
and .npy files for canvas arguments.

  $ source <(swapsort completion bash)
  $ swapsort completion zsh > "${fpath[1]}/_swapsort"
  $ swapsort completion fish | source`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
