package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cximage/pkg/artifact"
	"github.com/matzehuels/cximage/pkg/jobclient"
)

// statusCommand creates the status command for a submitted task.
func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the progress of a rendering task",
		Args:  usageArgs(1, "<task-id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			jobs, err := c.newJobClient(cfg)
			if err != nil {
				return err
			}

			st, err := jobs.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTaskStatus(st)
			return nil
		},
	}
}

// fetchCommand creates the fetch command, which downloads the result of a
// task submitted earlier.
func (c *CLI) fetchCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "fetch <task-id> <output-image-path>",
		Short: "Download the image of a submitted rendering task",
		Args:  usageArgs(2, "<task-id> <output-image-path>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			job, err := jobclient.Resume(args[0])
			if err != nil {
				return err
			}
			jobs, err := c.newJobClient(cfg)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			art, err := jobs.Fetch(ctx, job)
			if err != nil {
				return err
			}
			defer art.Body.Close()

			dl := c.downloadProgress(ctx)
			n, err := artifact.WriteFile(args[1], art.Body, artifact.Options{
				ChunkSize: cfg.ChunkSize,
				Progress:  dl.update,
			})
			dl.stop()
			if err != nil {
				return err
			}
			prog.done("Fetched "+job.ID, "bytes", n)

			printSuccess("Wrote %s", formatBytes(n))
			printFile(args[1])
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}

// deleteCommand creates the delete command, which removes a task and its
// result from the service.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a rendering task from the service",
		Args:  usageArgs(1, "<task-id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			job, err := jobclient.Resume(args[0])
			if err != nil {
				return err
			}
			jobs, err := c.newJobClient(cfg)
			if err != nil {
				return err
			}
			if err := jobs.Delete(cmd.Context(), job); err != nil {
				return err
			}
			printSuccess("Deleted task %s", StyleHighlight.Render(job.ID))
			return nil
		},
	}
}
