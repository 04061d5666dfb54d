package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/driver_availability/internal/client"
	"github.com/Freeeeeet/driver_availability/internal/model"
)

const usage = `usage: availctl [-addr URL] [-user ID] <command> [args]

commands:
  templates                         list templates
  days [YYYY-MM-DD]                 list day records, optionally for one date
  apply [-overwrite] TEMPLATE_ID FROM TO
                                    apply a template to a date range
`

func main() {
	addr := flag.String("addr", envOr("AVAILABILITY_API", "http://localhost:8080"), "API base URL")
	userID := flag.Int64("user", 0, "user id")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 || *userID <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	c := client.New(*addr, *timeout, nil)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, c, *userID, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, userID int64, args []string) error {
	switch args[0] {
	case "templates":
		templates, err := c.ListTemplates(ctx, userID)
		if err != nil {
			return err
		}
		for _, t := range templates {
			fmt.Printf("%d\t%s\t%d slots\n", t.ID, t.Name, t.WeekPattern.SlotCount())
		}
		return nil

	case "days":
		date := ""
		if len(args) > 1 {
			date = args[1]
		}
		days, err := c.ListAvailabilities(ctx, userID, date)
		if err != nil {
			return err
		}
		for _, d := range days {
			fmt.Printf("%s\t%d slots (%d available)\n", d.Date, len(d.SlotStatuses), d.SlotStatuses.Count(model.StatusAvailable))
		}
		return nil

	case "apply":
		fs := flag.NewFlagSet("apply", flag.ContinueOnError)
		overwrite := fs.Bool("overwrite", false, "replace existing records")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 3 {
			return errors.New("apply needs TEMPLATE_ID FROM TO")
		}
		var templateID int64
		if _, err := fmt.Sscan(fs.Arg(0), &templateID); err != nil {
			return fmt.Errorf("template id: %w", err)
		}

		res, err := c.ApplyTemplate(ctx, userID, templateID, fs.Arg(1), fs.Arg(2), *overwrite)
		fmt.Printf("created=%d updated=%d skipped=%d\n", res.Created, res.Updated, res.Skipped)
		if err != nil {
			if date, ok := model.FailedDate(err); ok {
				return fmt.Errorf("stopped at %s: %w", date, err)
			}
			return err
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
