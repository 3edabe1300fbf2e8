// Command aurora-pack packages a plugin folder into an .aml file.
//
//	aurora-pack ./my-plugin
//	aurora-pack ./my-plugin -o ./dist/my-plugin.aml
//	aurora-pack ./my-plugin -q
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/pack"
)

const version = "aurora-pack 1.0.0 (Aurora Melody SDK)"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7d56f4"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888")).Width(8)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04b575"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f87"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444"))
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("aurora-pack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("o", "", "output path for the .aml file")
	quiet := fs.Bool("q", false, "quiet mode, only print errors")
	showVersion := fs.Bool("version", false, "print the version and exit")
	verbose := fs.Bool("v", false, "log every packaged file")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: aurora-pack <plugin_folder> [-o output.aml] [-q] [-v]")
		fmt.Fprintln(stderr, "\nThe folder must contain manifest.json (id, name, version, author, entry) and the entry file.")
		fs.PrintDefaults()
	}

	// Accept the folder before or after the flags.
	var positional []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return 2
		}
		args = fs.Args()
		if len(args) > 0 {
			positional = append(positional, args[0])
			args = args[1:]
		}
	}

	if *showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}
	if len(positional) != 1 {
		fs.Usage()
		return 2
	}

	log := logger.NewNopLogger()
	if *verbose {
		log = logger.NewDevelopmentLogger()
		log.SetLevel(contracts.DebugLevel)
	}

	opts := []pack.Option{pack.WithLogger(log)}
	if *output != "" {
		opts = append(opts, pack.WithOutput(*output))
	}

	res, err := pack.Pack(positional[0], opts...)
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("Error:"), err)
		return 1
	}
	if !*quiet {
		fmt.Fprint(stdout, report(res))
	}
	return 0
}

func report(res *pack.Result) string {
	rule := ruleStyle.Render(strings.Repeat("=", 60))
	m := res.Manifest

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n%s\n%s\n\n", rule, titleStyle.Render("Aurora Melody Plugin Packager"), rule)
	fmt.Fprintf(&b, "%s%s v%s\n", labelStyle.Render("Plugin:"), m.Name, m.Version)
	fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("Author:"), m.Author)
	fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("Entry:"), m.Entry)
	fmt.Fprintf(&b, "%s%s\n\n", labelStyle.Render("Output:"), res.Path)
	for _, f := range res.Files {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("adding"), f)
	}
	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "%s %s (%.1f KB)\n", successStyle.Render("SUCCESS!"), res.Path, float64(res.Size)/1024)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "\nInstall: drag %s into Aurora Melody\n", res.Path)
	return b.String()
}
