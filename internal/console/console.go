// Package console is the line-oriented terminal front end of a receiver session.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/woozymasta/sharebite/internal/claim"
	"github.com/woozymasta/sharebite/internal/filter"
	"github.com/woozymasta/sharebite/internal/render"
	"github.com/woozymasta/sharebite/internal/view"

	"github.com/rs/zerolog/log"
)

const help = `Commands:
  list                 show the donation list
  search <text>        filter by food name (empty clears)
  category <name|all>  filter by category
  claim <n|id:ID>      claim a donation by list number or by id
  map                  write the map file again
  help                 show this help
  quit                 exit
`

// Console reads commands and drives the session, one command at a time.
type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	session  *view.Session
	workflow *claim.Workflow
	list     *render.TextList
	saveMap  func() error
	filter   filter.State

	categories []string
}

// New creates a console. saveMap may be nil.
func New(in io.Reader, out io.Writer, session *view.Session, workflow *claim.Workflow, list *render.TextList, saveMap func() error) *Console {
	return &Console{
		in:       bufio.NewScanner(in),
		out:      out,
		session:  session,
		workflow: workflow,
		list:     list,
		saveMap:  saveMap,
		filter:   filter.All,
	}
}

// SetCategories limits the category command to the known categories.
func (c *Console) SetCategories(categories []string) {
	c.categories = categories
}

func (c *Console) knownCategory(name string) bool {
	if len(c.categories) == 0 || strings.EqualFold(name, filter.AllCategories) {
		return true
	}
	for _, known := range c.categories {
		if strings.EqualFold(known, name) {
			return true
		}
	}
	return false
}

// Modal returns the claim dialog bound to the console output.
func Modal(out io.Writer) view.ModalView {
	return modal{out: out}
}

type modal struct {
	out io.Writer
}

func (m modal) Show(id string) { fmt.Fprintf(m.out, "-- Claim donation %s --\n", id) }
func (m modal) Hide()          { fmt.Fprintln(m.out, "-- claim dialog closed --") }

// Notifier prints alerts to out.
func Notifier(out io.Writer) view.Notifier {
	return view.NotifierFunc(func(msg string) {
		fmt.Fprintf(out, "! %s\n", msg)
	})
}

// Run processes commands until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	c.print()
	fmt.Fprint(c.out, "Type 'help' for commands.\n")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		cmd, arg, ok := c.prompt("> ")
		if !ok {
			return c.in.Err()
		}

		switch cmd {
		case "":
		case "list", "ls":
			c.print()
		case "search", "s":
			c.filter.SearchText = arg
			c.session.ApplyFilter(c.filter)
			c.print()
		case "category", "c":
			if arg == "" {
				arg = filter.AllCategories
			}
			if !c.knownCategory(arg) {
				fmt.Fprintf(c.out, "Unknown category %q. Known: all, %s\n", arg, strings.Join(c.categories, ", "))
				break
			}
			c.filter.Category = arg
			c.session.ApplyFilter(c.filter)
			c.print()
		case "claim":
			c.claim(ctx, arg)
		case "map":
			c.writeMap()
		case "help", "?":
			fmt.Fprint(c.out, help)
		case "quit", "exit", "q":
			return nil
		default:
			fmt.Fprintf(c.out, "Unknown command %q. Type 'help'.\n", cmd)
		}
	}
}

func (c *Console) prompt(p string) (cmd, arg string, ok bool) {
	fmt.Fprint(c.out, p)
	if !c.in.Scan() {
		return "", "", false
	}

	line := strings.TrimSpace(c.in.Text())
	cmd, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg), true
}

func (c *Console) ask(label, current string) (string, bool) {
	if current != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	if !c.in.Scan() {
		return "", false
	}
	v := strings.TrimSpace(c.in.Text())
	if v == "" {
		v = current
	}
	return v, true
}

func (c *Console) print() {
	if _, err := c.list.WriteTo(c.out); err != nil {
		log.Debug().Err(err).Msg("Failed to print list")
	}
}

func (c *Console) writeMap() {
	if c.saveMap == nil {
		fmt.Fprintln(c.out, "No map output configured.")
		return
	}
	if err := c.saveMap(); err != nil {
		log.Error().Err(err).Msg("Failed to write map")
		return
	}
	fmt.Fprintln(c.out, "Map written.")
}

// resolve maps a claim argument to a donation id. A number is always a
// list position; "id:<id>" names a donation directly. Any other text is
// taken as an id.
func (c *Console) resolve(arg string) (string, bool) {
	if id, ok := strings.CutPrefix(arg, "id:"); ok {
		id = strings.TrimSpace(id)
		_, found := c.session.Lookup(id)
		return id, found
	}

	n, err := strconv.Atoi(arg)
	if err != nil {
		_, found := c.session.Lookup(arg)
		return arg, found
	}

	records := c.session.Snapshot().Records
	if n < 1 || n > len(records) {
		return "", false
	}
	return records[n-1].ID, true
}

// claim walks the dialog: fill the form, submit, and on failure offer a retry
// with the fields kept.
func (c *Console) claim(ctx context.Context, arg string) {
	id, ok := c.resolve(arg)
	if !ok {
		fmt.Fprintf(c.out, "No donation %q in the list.\n", arg)
		return
	}

	if err := c.workflow.Select(id); err != nil {
		fmt.Fprintf(c.out, "Cannot open claim dialog: %v\n", err)
		return
	}

	for {
		form := c.workflow.Form()
		var filled bool
		if form.Name, filled = c.ask("Your name", form.Name); !filled {
			_ = c.workflow.Close()
			return
		}
		if form.Email, filled = c.ask("Your email", form.Email); !filled {
			_ = c.workflow.Close()
			return
		}
		if form.Phone, filled = c.ask("Your phone", form.Phone); !filled {
			_ = c.workflow.Close()
			return
		}

		err := c.workflow.Submit(ctx, form)
		if err == nil {
			c.print()
			return
		}
		if errors.Is(err, claim.ErrInFlight) || errors.Is(err, claim.ErrNotOpen) {
			fmt.Fprintf(c.out, "Cannot submit: %v\n", err)
			return
		}

		answer, _, ok := c.prompt("Try again? [y/N] ")
		if !ok || (answer != "y" && answer != "yes") {
			_ = c.workflow.Close()
			return
		}
	}
}
