package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/app"
	"github.com/heartmarshall/solarsite/internal/domain"
	"github.com/heartmarshall/solarsite/internal/service/calculator"
	"github.com/heartmarshall/solarsite/internal/service/session"
)

type console struct {
	app *app.App
	out io.Writer
}

func (c *console) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "signin":
		return c.signIn(ctx, args)
	case "signout":
		return c.signOut(ctx)
	case "whoami":
		return c.whoami(ctx)
	case "projects":
		return c.projects(ctx, args)
	case "reviews":
		return c.reviews(ctx, args)
	case "inquiries":
		return c.inquiries(ctx, args)
	case "settings":
		return c.settings(ctx, args)
	case "stats":
		return c.stats(ctx)
	case "calc":
		return c.calc(ctx, args)
	case "help", "-h", "--help":
		usage(c.out)
		return nil
	}
	return errUsage
}

// session bootstraps the manager and waits for a pending profile lookup.
func (c *console) session(ctx context.Context) (session.State, error) {
	if err := c.app.StartSession(ctx); err != nil {
		return session.State{}, err
	}
	wait, cancel := context.WithTimeout(ctx, c.app.Config.Session.ProfileTimeout)
	defer cancel()
	return c.app.Session.WaitSettled(wait), nil
}

func (c *console) requireAdmin(ctx context.Context) error {
	st, err := c.session(ctx)
	if err != nil {
		return err
	}
	if st.Identity == nil {
		return fmt.Errorf("%w: not signed in; run `console signin` first", domain.ErrUnauthorized)
	}
	if !st.IsAdmin() {
		return fmt.Errorf("%w: %s is not an administrator", domain.ErrForbidden, st.Identity.Email)
	}
	return nil
}

func (c *console) signIn(ctx context.Context, args []string) error {
	fs := newFlagSet("signin")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (default $CONSOLE_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *password == "" {
		*password = os.Getenv("CONSOLE_PASSWORD")
	}
	if *email == "" || *password == "" {
		return errUsage
	}

	if err := c.app.StartSession(ctx); err != nil {
		return err
	}
	if err := c.app.Session.SignIn(ctx, *email, *password); err != nil {
		var serr *session.SignInError
		if errors.As(err, &serr) {
			switch serr.Kind {
			case session.SignInInvalidCredentials:
				return errors.New("invalid email or password")
			case session.SignInTimeout:
				return errors.New("sign-in timed out; try again")
			}
		}
		return err
	}
	c.printState(c.app.Session.Snapshot())
	return nil
}

func (c *console) signOut(ctx context.Context) error {
	if err := c.app.StartSession(ctx); err != nil {
		return err
	}
	err := c.app.Session.SignOut(ctx)
	fmt.Fprintln(c.out, "signed out")
	return err
}

func (c *console) whoami(ctx context.Context) error {
	st, err := c.session(ctx)
	if err != nil {
		return err
	}
	c.printState(st)
	return nil
}

func (c *console) printState(st session.State) {
	fmt.Fprintf(c.out, "backend: %s\n", c.app.Selector.Mode())
	if st.Identity == nil {
		fmt.Fprintln(c.out, "not signed in")
		return
	}
	name := st.Identity.FullName
	if st.Profile != nil && st.Profile.FullName != "" {
		name = st.Profile.FullName
	}
	fmt.Fprintf(c.out, "email:   %s\n", st.Identity.Email)
	if name != "" {
		fmt.Fprintf(c.out, "name:    %s\n", name)
	}
	fmt.Fprintf(c.out, "admin:   %t\n", st.IsAdmin())
	if st.Profile == nil {
		fmt.Fprintln(c.out, "profile: unavailable")
	}
}

func (c *console) projects(ctx context.Context, args []string) error {
	sub, args := subcommand(args, "list")
	svc := c.app.Catalog.Projects

	switch sub {
	case "list":
		fs := newFlagSet("projects list")
		var f domain.ProjectFilter
		fs.StringVar(&f.Search, "search", "", "free-text search")
		fs.StringVar(&f.City, "city", "", "exact city")
		fs.StringVar(&f.State, "state", "", "exact state")
		fs.StringVar(&f.Tag, "tag", "", "tag")
		status := fs.String("status", "", "active|completed|pending")
		minKW := fs.Float64("min-kw", -1, "minimum capacity")
		maxKW := fs.Float64("max-kw", -1, "maximum capacity")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		f.Status = domain.ProjectStatus(*status)
		if *minKW >= 0 {
			f.MinCapacity = minKW
		}
		if *maxKW >= 0 {
			f.MaxCapacity = maxKW
		}
		printProjects(c.out, svc.List(ctx, f))
		return nil

	case "add":
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		fs := newFlagSet("projects add")
		var in domain.NewProject
		fs.StringVar(&in.Title, "title", "", "title (required)")
		fs.StringVar(&in.Description, "description", "", "description")
		fs.Float64Var(&in.CapacityKW, "kw", 0, "capacity in kW")
		fs.StringVar(&in.Address, "address", "", "street address")
		fs.StringVar(&in.City, "city", "", "city")
		fs.StringVar(&in.State, "state", "", "state")
		status := fs.String("status", "", "active|completed|pending")
		tags := fs.String("tags", "", "comma-separated tags")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		in.Status = domain.ProjectStatus(*status)
		in.Tags = splitList(*tags)
		if err := in.Validate(); err != nil {
			return err
		}
		p := svc.Create(ctx, in)
		if p == nil {
			return errFailed("create project")
		}
		fmt.Fprintf(c.out, "created %s\n", p.ID)
		return nil

	case "update":
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		fs := newFlagSet("projects update")
		id := fs.String("id", "", "project id")
		title := fs.String("title", "", "new title")
		status := fs.String("status", "", "new status")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		pid, err := uuid.Parse(*id)
		if err != nil {
			return fmt.Errorf("invalid id %q", *id)
		}
		var patch domain.ProjectPatch
		if *title != "" {
			patch.Title = title
		}
		if *status != "" {
			st := domain.ProjectStatus(*status)
			patch.Status = &st
		}
		if err := patch.Validate(); err != nil {
			return err
		}
		p := svc.Update(ctx, pid, patch)
		if p == nil {
			return errFailed("update project")
		}
		fmt.Fprintf(c.out, "updated %s\n", p.ID)
		return nil

	case "delete":
		return c.deleteByID(ctx, "projects delete", args, svc.Delete)
	}
	return errUsage
}

func (c *console) reviews(ctx context.Context, args []string) error {
	sub, args := subcommand(args, "list")
	svc := c.app.Catalog.Reviews

	switch sub {
	case "list":
		fs := newFlagSet("reviews list")
		pending := fs.Bool("pending", false, "only reviews awaiting approval")
		search := fs.String("search", "", "free-text search")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		f := domain.ReviewFilter{Search: *search}
		if *pending {
			approved := false
			f.IsApproved = &approved
		} else if c.requireAdmin(ctx) != nil {
			approved := true
			f.IsApproved = &approved
		}
		printReviews(c.out, svc.List(ctx, f))
		return nil

	case "approve":
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		fs := newFlagSet("reviews approve")
		id := fs.String("id", "", "review id")
		response := fs.String("response", "", "public admin response")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		rid, err := uuid.Parse(*id)
		if err != nil {
			return fmt.Errorf("invalid id %q", *id)
		}
		var resp *string
		if *response != "" {
			resp = response
		}
		if svc.Approve(ctx, rid, resp) == nil {
			return errFailed("approve review")
		}
		fmt.Fprintf(c.out, "approved %s\n", rid)
		return nil

	case "delete":
		return c.deleteByID(ctx, "reviews delete", args, svc.Delete)
	}
	return errUsage
}

func (c *console) inquiries(ctx context.Context, args []string) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	sub, args := subcommand(args, "list")
	svc := c.app.Catalog.Inquiries

	switch sub {
	case "list":
		fs := newFlagSet("inquiries list")
		status := fs.String("status", "", "new|in_progress|resolved|archived")
		search := fs.String("search", "", "free-text search")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		printInquiries(c.out, svc.List(ctx, domain.InquiryFilter{
			Search: *search,
			Status: domain.InquiryStatus(*status),
		}))
		return nil

	case "status":
		fs := newFlagSet("inquiries status")
		id := fs.String("id", "", "inquiry id")
		to := fs.String("to", "", "new|in_progress|resolved|archived")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		iid, err := uuid.Parse(*id)
		if err != nil {
			return fmt.Errorf("invalid id %q", *id)
		}
		status := domain.InquiryStatus(*to)
		if !status.IsValid() {
			return fmt.Errorf("invalid status %q", *to)
		}
		if svc.SetStatus(ctx, iid, status) == nil {
			return errFailed("update inquiry")
		}
		fmt.Fprintf(c.out, "inquiry %s is now %s\n", iid, status)
		return nil

	case "delete":
		return c.deleteByID(ctx, "inquiries delete", args, svc.Delete)
	}
	return errUsage
}

func (c *console) settings(ctx context.Context, args []string) error {
	sub, args := subcommand(args, "show")
	svc := c.app.Catalog.Settings

	switch sub {
	case "show":
		s := svc.Get(ctx)
		if s == nil {
			return errFailed("load settings")
		}
		printSettings(c.out, *s)
		return nil

	case "set":
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		fs := newFlagSet("settings set")
		var patch domain.SettingsPatch
		optString(fs, &patch.CompanyName, "company", "company name")
		optString(fs, &patch.Email, "email", "contact email")
		optString(fs, &patch.Phone, "phone", "contact phone")
		optString(fs, &patch.WhatsApp, "whatsapp", "WhatsApp number")
		optFloat(fs, &patch.TariffPerKWh, "tariff", "tariff per kWh")
		optFloat(fs, &patch.KWhPerKWPerMonth, "kwh-per-kw", "monthly generation per kW")
		optFloat(fs, &patch.SystemCostPerKW, "cost-per-kw", "system cost per kW")
		optFloat(fs, &patch.SubsidyPercentage, "subsidy", "subsidy percentage")
		optFloat(fs, &patch.MaintenanceCostPerKWYear, "maintenance", "maintenance per kW per year")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if patch.IsEmpty() {
			return errUsage
		}
		if err := patch.Validate(); err != nil {
			return err
		}
		s := svc.Update(ctx, patch)
		if s == nil {
			return errFailed("update settings")
		}
		printSettings(c.out, *s)
		return nil
	}
	return errUsage
}

func (c *console) stats(ctx context.Context) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	printStats(c.out, c.app.Catalog.Stats.Compute(ctx))
	return nil
}

func (c *console) calc(ctx context.Context, args []string) error {
	fs := newFlagSet("calc")
	monthly := fs.Float64("monthly", 0, "monthly bill, or kWh with -energy")
	energy := fs.Bool("energy", false, "monthly is consumption in kWh")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	s := c.app.Catalog.Settings.Get(ctx)
	if s == nil {
		return errFailed("load settings")
	}
	res, ok := calculator.ComputeSavings(*monthly, *energy, *s)
	if !ok {
		return errors.New("monthly must be a positive number")
	}
	printResults(c.out, res)
	return nil
}

func (c *console) deleteByID(ctx context.Context, name string, args []string, del func(context.Context, uuid.UUID) bool) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	fs := newFlagSet(name)
	id := fs.String("id", "", "id to delete")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	parsed, err := uuid.Parse(*id)
	if err != nil {
		return fmt.Errorf("invalid id %q", *id)
	}
	if !del(ctx, parsed) {
		return errFailed("delete")
	}
	fmt.Fprintf(c.out, "deleted %s\n", parsed)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// subcommand splits a leading non-flag word off args.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func errFailed(op string) error {
	return fmt.Errorf("%s failed; see the log for details", op)
}
