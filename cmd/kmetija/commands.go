package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/erazemk/kmetija/internal/inventory"
	"github.com/erazemk/kmetija/internal/model"
)

// usageError is a mistake in the command line rather than a failed operation.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// cli runs one command against the inventory service.
type cli struct {
	svc *inventory.Service
	out io.Writer
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		items, err := c.svc.GetAll(ctx)
		c.printItems(items)
		return err
	case "get":
		return c.get(ctx, args)
	case "search":
		if len(args) != 1 {
			return usagef("search takes exactly one argument")
		}
		items, err := c.svc.Search(ctx, args[0])
		c.printItems(items)
		return err
	case "add-harvest":
		return c.add(ctx, model.NewHarvestLot("", 0, "kg", model.Today()), args)
	case "add-equipment":
		return c.add(ctx, model.NewEquipmentItem("", 1, "pieces", model.Today()), args)
	case "update":
		return c.update(ctx, args)
	case "delete":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := c.svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted item %d.\n", id)
		return nil
	case "export":
		if len(args) != 1 {
			return usagef("export takes a file path")
		}
		items, err := c.svc.GetAll(ctx)
		if err != nil {
			return err
		}
		if err := c.svc.ExportCSV(ctx, args[0], items); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Exported %d items to %s.\n", len(items), args[0])
		return nil
	case "import":
		if len(args) != 1 {
			return usagef("import takes a file path")
		}
		return c.importFile(ctx, args[0])
	default:
		return usagef("unknown command %q", cmd)
	}
}

func (c *cli) get(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	item, err := c.svc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		fmt.Fprintf(c.out, "Item %d not found.\n", id)
		return nil
	}
	c.printItems([]model.Item{item})
	return nil
}

func (c *cli) add(ctx context.Context, item model.Item, args []string) error {
	if err := applyItemFlags(item, args); err != nil {
		return err
	}
	if err := model.Validate(item); err != nil {
		return usagef("%v", err)
	}
	if err := c.svc.Create(ctx, item); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created %s item %d.\n", strings.ToLower(string(item.ItemType())), item.Common().ID)
	return nil
}

func (c *cli) update(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("update needs an item id")
	}
	id, err := parseID(args[:1])
	if err != nil {
		return err
	}

	item, err := c.svc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		fmt.Fprintf(c.out, "Item %d not found.\n", id)
		return nil
	}

	if err := applyItemFlags(item, args[1:]); err != nil {
		return err
	}
	if err := model.Validate(item); err != nil {
		return usagef("%v", err)
	}

	n, err := c.svc.Update(ctx, item)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(c.out, "Item %d was removed before it could be updated.\n", id)
		return nil
	}
	fmt.Fprintf(c.out, "Updated item %d.\n", id)
	return nil
}

func (c *cli) importFile(ctx context.Context, path string) error {
	res, err := c.svc.ImportCSV(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Imported %d items (%d failed, %d lines skipped, %d dropped).\n",
		len(res.Created), len(res.Failed), len(res.Skipped), res.Dropped)
	for _, f := range res.Failed {
		fmt.Fprintf(c.out, "  failed: %s: %v\n", f.Item.Common().Name, f.Err)
	}
	for _, le := range res.Skipped {
		fmt.Fprintf(c.out, "  skipped: %v\n", le)
	}
	return nil
}

func (c *cli) printItems(items []model.Item) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(model.RowHeader, "\t"))
	for _, item := range items {
		fmt.Fprintln(tw, strings.Join(item.Row(), "\t"))
	}
	tw.Flush()
}

// applyItemFlags sets the fields named on the command line and leaves the
// rest of item alone.
func applyItemFlags(item model.Item, args []string) error {
	b := item.Common()
	fs := flag.NewFlagSet("item", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&b.Name, "name", b.Name, "")
	fs.Float64Var(&b.Quantity, "qty", b.Quantity, "")
	fs.StringVar(&b.Unit, "unit", b.Unit, "")
	fs.StringVar(&b.Notes, "notes", b.Notes, "")
	fs.Func("date", "", func(s string) error {
		d, err := model.ParseDate(s)
		if err != nil {
			return fmt.Errorf("date must be yyyy-MM-dd")
		}
		b.DateAdded = d
		return nil
	})

	model.Match(item,
		func(h *model.HarvestLot) any {
			fs.StringVar(&h.Status, "status", h.Status, "")
			fs.Func("price", "", func(s string) error {
				if s == "" || s == "none" {
					h.PricePerUnit = nil
					return nil
				}
				p, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("price must be a number")
				}
				h.SetPrice(p)
				return nil
			})
			return nil
		},
		func(e *model.EquipmentItem) any {
			fs.StringVar(&e.Condition, "condition", e.Condition, "")
			return nil
		},
	)

	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if fs.NArg() > 0 {
		return usagef("unexpected argument %q", fs.Arg(0))
	}
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, usagef("expected exactly one item id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("invalid item id %q", args[0])
	}
	return id, nil
}
