package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"hikari/internal/config"
	"hikari/internal/events"
	"hikari/internal/export"
	"hikari/internal/models"
	"hikari/internal/profile"
	"hikari/internal/reservation"

	"github.com/rs/zerolog"
)

var errQuit = errors.New("quit")

const helpText = `Commands:
  map                                      show the table map
  search <YYYY-MM-DD> <HH:MM> <guests> [duration]
                                           check availability
  select <id>                              select or deselect a table
  reserve                                  book the selected table
  guest name=... email=... phone=... comment=...
                                           submit the guest details form
  login <email> <password>                 sign in
  logout                                   sign out
  bookings                                 list your bookings
  cancel <id>                              cancel one of your bookings
  ical <id> <file>                         save a booking to a calendar file
  export <file>                            save your bookings to a spreadsheet
  help                                     show this help
  quit                                     exit
`

// sessionBackend signs the shell in and out.
type sessionBackend interface {
	Me(ctx context.Context) (*models.Me, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
}

// shell is the terminal event loop. Every command runs on the loop goroutine.
type shell struct {
	cfg     *config.Config
	session sessionBackend
	page    *reservation.Page
	profile *profile.Page
	bus     *events.EventBus
	out     io.Writer
	logger  *zerolog.Logger
}

func newShell(
	cfg *config.Config,
	session sessionBackend,
	page *reservation.Page,
	prof *profile.Page,
	bus *events.EventBus,
	out io.Writer,
	logger *zerolog.Logger,
) *shell {
	return &shell{cfg: cfg, session: session, page: page, profile: prof, bus: bus, out: out, logger: logger}
}

// start wires event output, resolves the session and renders the map.
func (s *shell) start(ctx context.Context) error {
	s.bus.Subscribe(events.EventAvailabilityUpdated, func(e *events.Event) error {
		var p events.AvailabilityPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		if p.SelectionLost {
			s.printf("The selected table is not available for this search and was deselected.\n")
		}
		return nil
	})
	s.bus.Subscribe(events.EventBookingCreated, func(e *events.Event) error {
		var p events.BookingPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		s.logger.Info().Int64("booking_id", p.BookingID).Str("flow", p.Flow).Msg("booking confirmed by backend")
		return nil
	})

	if !s.page.Authenticated() {
		if me, err := s.session.Me(ctx); err != nil {
			s.logger.Debug().Err(err).Msg("session check failed")
		} else if me.IsAuthenticated {
			s.page.SetAuthenticated(true)
		}
	}

	if err := s.page.Load(ctx); err != nil {
		return fmt.Errorf("load table map: %w", err)
	}
	return nil
}

// run reads commands until quit, EOF or ctx is done.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	s.printf("%s ready. Type \"help\" for commands.\n> ", s.cfg.App.Name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := s.exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				s.printf("%s\n", reservation.UserMessage(err))
			}
			s.printf("> ")
		}
	}
}

func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		s.printf("%s", helpText)
		return nil
	case "quit", "exit":
		return errQuit
	case "map":
		s.printMap()
		return nil
	case "search":
		return s.search(ctx, args)
	case "select":
		return s.selectTable(args)
	case "reserve":
		return s.reserve(ctx)
	case "guest":
		return s.guest(ctx, args)
	case "login":
		return s.login(ctx, args)
	case "logout":
		return s.logout(ctx)
	case "bookings":
		return s.bookings(ctx)
	case "cancel":
		return s.cancel(ctx, args)
	case "ical":
		return s.ical(ctx, args)
	case "export":
		return s.export(ctx, args)
	}
	return fmt.Errorf("unknown command %q, type \"help\"", cmd)
}

func (s *shell) printMap() {
	selected, _ := s.page.Selected()
	w := tabwriter.NewWriter(s.out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tTABLE\tSEATS\tSTATE\tUNTIL\tPOS")
	for _, n := range s.page.Nodes() {
		mark := ""
		if n.Table.ID == selected {
			mark = "*"
		}
		state := "available"
		if !n.Enabled {
			state = "unavailable"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\t%s\t%.1f,%.1f\n",
			mark, n.Table.ID, n.Table.Name, n.Table.Capacity, state,
			s.page.AvailableUntil(n.Table.ID), n.Left, n.Top)
	}
	_ = w.Flush()
}

func (s *shell) search(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: search <YYYY-MM-DD> <HH:MM> <guests> [duration]")
	}
	guests, err := strconv.Atoi(args[2])
	if err != nil || guests <= 0 {
		return fmt.Errorf("guests must be a positive number, got %q", args[2])
	}
	criteria := models.SearchCriteria{Date: args[0], Start: args[1], Guests: guests}
	if len(args) > 3 {
		if criteria.Duration, err = strconv.Atoi(args[3]); err != nil {
			return fmt.Errorf("duration must be minutes, got %q", args[3])
		}
	}

	applied, err := s.page.Check(ctx, criteria)
	if err != nil {
		return err
	}
	if !applied {
		s.printf("Availability could not be checked; the map shows the last known state.\n")
	}
	s.printMap()
	return nil
}

func (s *shell) selectTable(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: select <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("table id must be a number, got %q", args[0])
	}
	selected, err := s.page.Select(id)
	if err != nil {
		return err
	}
	if selected {
		s.printf("Table %d selected.\n", id)
	} else {
		s.printf("Table %d deselected.\n", id)
	}
	return nil
}

func (s *shell) reserve(ctx context.Context) error {
	out, err := s.page.Reserve(ctx)
	if err != nil {
		return err
	}
	if out.Guest != nil {
		s.printf("Guest booking:\n")
		for _, l := range out.Guest.Summary() {
			s.printf("  %s\n", l)
		}
		s.printf("Enter your details: guest name=... email=... phone=... comment=...\n")
		return nil
	}
	s.printConfirmation(out.Confirmation)
	return nil
}

func (s *shell) guest(ctx context.Context, args []string) error {
	form := s.page.Guest()
	if !form.IsOpen() {
		return reservation.ErrFormClosed
	}
	form.SetContact(parseContact(args))

	conf, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	s.printConfirmation(conf)
	return nil
}

// parseContact reads key=value pairs; words without "=" extend the previous value.
func parseContact(args []string) reservation.Contact {
	values := map[string]string{}
	last := ""
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok {
			last = strings.ToLower(k)
			values[last] = v
			continue
		}
		if last != "" {
			values[last] += " " + a
		}
	}
	return reservation.Contact{
		Name:    values["name"],
		Email:   values["email"],
		Phone:   values["phone"],
		Comment: values["comment"],
	}
}

func (s *shell) printConfirmation(c *reservation.Confirmation) {
	s.printf("Reservation received!\n")
	for _, l := range c.Lines() {
		s.printf("  %s\n", l)
	}
}

func (s *shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <email> <password>")
	}
	if err := s.session.Login(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	me, err := s.session.Me(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	s.page.SetAuthenticated(me.IsAuthenticated)
	if me.IsAuthenticated {
		s.printf("Signed in as %s.\n", me.Email)
	}
	return nil
}

func (s *shell) logout(ctx context.Context) error {
	if err := s.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	s.page.SetAuthenticated(false)
	s.printf("Signed out.\n")
	return nil
}

func (s *shell) bookings(ctx context.Context) error {
	tabs, err := s.profile.Load(ctx)
	if err != nil {
		return err
	}
	active := s.profile.ActiveTab()
	for _, tab := range tabs {
		mark := " "
		if tab.Status == active {
			mark = ">"
		}
		s.printf("%s %s (%d)\n", mark, tab.Label, tab.Count)
		for _, b := range tab.Bookings {
			cancel := ""
			if profile.CanCancel(b) {
				cancel = "  [cancel]"
			}
			table := b.TableName
			if table == "" {
				table = b.Table.Name
			}
			s.printf("    #%d %s %s, %d guests%s\n",
				b.ID, b.DatetimeStart.Local().Format("2006-01-02 15:04"), table, b.Guests, cancel)
		}
	}
	return nil
}

func (s *shell) cancel(ctx context.Context, args []string) error {
	id, err := bookingID(args, "usage: cancel <id>")
	if err != nil {
		return err
	}
	if len(s.profile.Tabs()) == 0 {
		if _, err := s.profile.Load(ctx); err != nil {
			return err
		}
	}
	if err := s.profile.Cancel(ctx, id); err != nil {
		return err
	}
	s.printf("Booking #%d canceled.\n", id)
	return nil
}

func (s *shell) ical(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: ical <id> <file>")
	}
	id, err := bookingID(args[:1], "usage: ical <id> <file>")
	if err != nil {
		return err
	}
	data, err := s.profile.ICal(ctx, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return fmt.Errorf("write calendar file: %w", err)
	}
	s.printf("Saved %s.\n", args[1])
	return nil
}

func (s *shell) export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: export <file>")
	}
	tabs, err := s.profile.Load(ctx)
	if err != nil {
		return err
	}
	path := args[0]
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		path = filepath.Join(s.cfg.Exports.Path, path)
	}
	n, err := export.WriteBookings(path, tabs)
	if err != nil {
		return err
	}
	s.logger.Info().Str("file_path", path).Int("rows", n).Msg("bookings exported")
	s.printf("Exported %d bookings to %s.\n", n, path)
	return nil
}

func bookingID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("booking id must be a number, got %q", args[0])
	}
	return id, nil
}

func (s *shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
