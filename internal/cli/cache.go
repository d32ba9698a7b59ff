package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/districtviz/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached datasets, search responses and charts",
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cachePruneCommand(), c.cachePathCommand())
	return cmd
}

// openFileCache opens the configured file cache for maintenance. It reports
// ok=false when the backend is not file based or nothing has been cached.
func (c *CLI) openFileCache() (fc *cache.FileCache, ok bool, err error) {
	if c.Config.Cache.Backend == cacheRedis {
		printWarning("Cache backend is redis; entries expire on their own")
		return nil, false, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, false, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil, false, nil
	}
	fc, err = cache.NewFileCache(dir)
	if err != nil {
		return nil, false, err
	}
	return fc, true, nil
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, ok, err := c.openFileCache()
			if err != nil || !ok {
				return err
			}
			n, err := fc.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, ok, err := c.openFileCache()
			if err != nil || !ok {
				return err
			}
			n, err := fc.Prune(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Pruned %d expired entries", n)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
