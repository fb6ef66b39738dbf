package main

import (
	"fmt"
	"path/filepath"

	units "github.com/docker/go-units"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	shrink "github.com/iw4x/shrink-iw4x"
)

var inspectList bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [dir]",
	Short: "Show what would be removed without modifying anything",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectList, "list", false, "list every entry that would be removed")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	fsys := afero.NewOsFs()
	policy := loadPolicy()
	base := baseDirArg(args)

	totalFiles := 0
	var totalBytes uint64
	for _, name := range viper.GetStringSlice("dirs") {
		dir := filepath.Join(base, name)
		ok, err := afero.DirExists(fsys, dir)
		if err != nil || !ok {
			continue
		}
		infos, err := afero.ReadDir(fsys, dir)
		if err != nil {
			return err
		}
		for _, info := range infos {
			if !info.Mode().IsRegular() || !policy.MatchesArchive(info.Name()) {
				continue
			}
			path := filepath.Join(dir, info.Name())
			files, bytes, err := inspectArchive(fsys, path, policy)
			if err != nil {
				fmt.Printf("Error reading %s: %v\n", path, err)
				continue
			}
			totalFiles += files
			totalBytes += bytes
		}
	}

	fmt.Printf("\nWould remove %d files (%s)\n", totalFiles, units.HumanSize(float64(totalBytes)))
	return nil
}

func inspectArchive(fsys afero.Fs, path string, policy shrink.Policy) (int, uint64, error) {
	a, err := shrink.Open(fsys, path)
	if err != nil {
		return 0, 0, err
	}
	defer a.Close()

	rm, err := a.Plan(policy)
	if err != nil {
		return 0, 0, err
	}
	fmt.Printf("%s: %d of %d entries, %s\n", path, rm.Files(), a.Len(), units.HumanSize(float64(rm.Bytes())))
	if inspectList {
		for _, e := range a.Entries() {
			if rm.Contains(e.Index) {
				fmt.Printf("    %s\n", e.Name)
			}
		}
	}
	return rm.Files(), rm.Bytes(), nil
}
