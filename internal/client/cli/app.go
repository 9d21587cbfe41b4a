// Package cli implements the taskctl command line client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/taskboard-be/internal/client"
	"github.com/hongminglow/taskboard-be/internal/client/sessionstore"
	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/models/dto"
)

const searchDelay = 400 * time.Millisecond

// App runs one taskctl command.
type App struct {
	api      *client.API
	sessions *client.SessionManager
	stdin    io.Reader
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	delay    time.Duration
}

func NewApp(api *client.API, sessions *client.SessionManager, stdin io.Reader, out, errOut io.Writer) *App {
	return &App{
		api:      api,
		sessions: sessions,
		stdin:    stdin,
		in:       bufio.NewReader(stdin),
		out:      out,
		errOut:   errOut,
		delay:    searchDelay,
	}
}

// Main loads config, opens the session store and runs the command in args.
// It returns the process exit code.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, rest, err := LoadConfig(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if dir := filepath.Dir(cfg.SessionDB); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			fmt.Fprintf(stderr, "error: create session dir: %v\n", err)
			return 1
		}
	}
	store, err := sessionstore.Open(ctx, cfg.SessionDB)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer store.Close()

	api := client.NewAPI(cfg.ServerURL, &http.Client{Timeout: 15 * time.Second})
	app := NewApp(api, client.NewSessionManager(api, store), stdin, stdout, stderr)
	return app.Run(ctx, rest)
}

// Run dispatches args[0]. Every failure is reported as a single line and
// leaves the saved session untouched unless the server rejected it.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		usage(a.errOut)
		return 2
	}
	if _, err := a.sessions.Restore(ctx); err != nil {
		a.fail(err)
		return 1
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "register":
		err = a.register(ctx, rest)
	case "login":
		err = a.login(ctx, rest)
	case "logout":
		err = a.logout(ctx)
	case "whoami":
		err = a.whoami()
	case "profile":
		err = a.profile(ctx)
	case "profile-set":
		err = a.profileSet(ctx, rest)
	case "add":
		err = a.add(ctx, rest)
	case "list":
		err = a.list(ctx, rest)
	case "edit":
		err = a.edit(ctx, rest)
	case "toggle":
		err = a.toggle(ctx, rest)
	case "rm":
		err = a.remove(ctx, rest)
	case "stats":
		err = a.stats(ctx)
	case "search":
		err = a.search(ctx)
	case "help", "-h", "--help":
		usage(a.out)
		return 0
	default:
		fmt.Fprintf(a.errOut, "unknown command %q\n", cmd)
		usage(a.errOut)
		return 2
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		a.fail(err)
		return 1
	}
	return 0
}

func (a *App) fail(err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		fmt.Fprintln(a.errOut, "error: not logged in; run `taskctl login` first")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.errOut, "error: cannot reach the server, check TASKCTL_SERVER_URL")
	case client.IsSessionExpired(err) && a.loggedIn():
		fmt.Fprintln(a.errOut, "error: session expired or invalid; run `taskctl login` again")
	case errors.As(err, &apiErr):
		fmt.Fprintf(a.errOut, "error: %s\n", apiErr.Message)
	default:
		fmt.Fprintf(a.errOut, "error: %v\n", err)
	}
}

// rememberUser refreshes the cached user. The server call already
// succeeded, so a save failure is only a warning.
func (a *App) rememberUser(ctx context.Context, user models.User) {
	if err := a.sessions.RememberUser(ctx, user); err != nil {
		fmt.Fprintf(a.errOut, "warning: could not update saved session: %v\n", err)
	}
}

func (a *App) loggedIn() bool {
	_, ok := a.sessions.Current()
	return ok
}

func (a *App) authed() (*client.API, error) {
	return a.sessions.Client()
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *name == "" {
		if *name, err = promptLine(a.in, a.out, "Name: "); err != nil {
			return err
		}
	}
	if *email == "" {
		if *email, err = promptLine(a.in, a.out, "Email: "); err != nil {
			return err
		}
	}
	password, err := promptPassword(a.in, a.out, a.stdin)
	if err != nil {
		return err
	}

	user, err := a.api.Register(ctx, dto.RegisterRequest{Name: *name, Email: *email, Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account created for %s. Now run `taskctl login`.\n", user.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *email == "" {
		if *email, err = promptLine(a.in, a.out, "Email: "); err != nil {
			return err
		}
	}
	password, err := promptPassword(a.in, a.out, a.stdin)
	if err != nil {
		return err
	}

	s, err := a.sessions.Login(ctx, *email, password)
	if errors.Is(err, client.ErrUnauthenticated) {
		return errors.New("invalid email or password")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", s.User.Name, s.User.Email)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami() error {
	s, ok := a.sessions.Current()
	if !ok {
		return client.ErrNotLoggedIn
	}
	fmt.Fprintf(a.out, "%s <%s>\n", s.User.Name, s.User.Email)
	return nil
}

func (a *App) profile(ctx context.Context) error {
	api, err := a.authed()
	if err != nil {
		return err
	}
	user, err := api.Profile(ctx)
	if err != nil {
		return err
	}
	a.rememberUser(ctx, user)
	a.printProfile(user)
	return nil
}

func (a *App) profileSet(ctx context.Context, args []string) error {
	fs := a.flags("profile-set")
	name := fs.String("name", "", "new display name")
	bio := fs.String("bio", "", "new bio (empty clears it)")
	skills := fs.String("skills", "", "comma separated skills (empty clears them)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var patch models.ProfilePatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = models.Some(*name)
		case "bio":
			patch.Bio = models.Some(*bio)
		case "skills":
			patch.Skills = models.Some(models.ParseSkills(*skills))
		}
	})
	if patch.Empty() {
		return errors.New("nothing to update; pass --name, --bio or --skills")
	}

	api, err := a.authed()
	if err != nil {
		return err
	}
	user, err := api.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	a.rememberUser(ctx, user)
	fmt.Fprintln(a.out, "Profile updated")
	a.printProfile(user)
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.flags("add")
	title := fs.String("title", "", "task title")
	description := fs.String("description", "", "task description")
	status := fs.String("status", "", "pending or completed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" && fs.NArg() > 0 {
		*title = strings.Join(fs.Args(), " ")
	}

	draft := models.TaskDraft{Title: *title, Description: *description}
	if *status != "" {
		st, err := models.ParseTaskStatus(*status)
		if err != nil {
			return err
		}
		draft.Status = models.Some(st)
	}

	api, err := a.authed()
	if err != nil {
		return err
	}
	task, err := api.CreateTask(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", task.ID)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	search := fs.String("search", "", "case-insensitive title search")
	status := fs.String("status", "", "pending or completed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := models.TaskFilter{Search: *search}
	if *status != "" && *status != "all" {
		st, err := models.ParseTaskStatus(*status)
		if err != nil {
			return err
		}
		filter.Status = models.Some(st)
	}

	api, err := a.authed()
	if err != nil {
		return err
	}
	tasks, err := api.ListTasks(ctx, filter)
	if err != nil {
		return err
	}
	a.printTasks(tasks)
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	id, rest, err := taskIDArg(args)
	if err != nil {
		return err
	}
	fs := a.flags("edit")
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description (empty clears it)")
	status := fs.String("status", "", "pending or completed")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var (
		patch    models.TaskPatch
		parseErr error
	)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = models.Some(*title)
		case "description":
			patch.Description = models.Some(*description)
		case "status":
			st, err := models.ParseTaskStatus(*status)
			if err != nil {
				parseErr = err
				return
			}
			patch.Status = models.Some(st)
		}
	})
	if parseErr != nil {
		return parseErr
	}

	api, err := a.authed()
	if err != nil {
		return err
	}
	task, err := api.UpdateTask(ctx, id, patch)
	if err != nil {
		return err
	}
	a.printTasks([]models.Task{task})
	return nil
}

func (a *App) toggle(ctx context.Context, args []string) error {
	id, _, err := taskIDArg(args)
	if err != nil {
		return err
	}
	api, err := a.authed()
	if err != nil {
		return err
	}
	tasks, err := api.ListTasks(ctx, models.TaskFilter{})
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.ID == id {
			updated, err := api.ToggleStatus(ctx, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s is now %s\n", updated.Title, updated.Status)
			return nil
		}
	}
	return client.ErrNotFound
}

func (a *App) remove(ctx context.Context, args []string) error {
	id, _, err := taskIDArg(args)
	if err != nil {
		return err
	}
	api, err := a.authed()
	if err != nil {
		return err
	}
	if err := api.RemoveTask(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

func (a *App) stats(ctx context.Context) error {
	api, err := a.authed()
	if err != nil {
		return err
	}
	s, err := api.TaskStats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "total: %d  pending: %d  completed: %d\n", s.Total, s.Pending, s.Completed)
	return nil
}

// search reads search terms line by line and lists matches once typing
// pauses. An empty line or EOF ends the session.
func (a *App) search(ctx context.Context) error {
	api, err := a.authed()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Type to search titles; empty line to quit.")

	type result struct {
		seq int
		err error
	}
	var (
		mu     sync.Mutex
		latest result
	)
	finished := make(chan struct{}, 1)

	d := client.NewDebouncer(a.delay)
	defer d.Stop()

	seq := 0
	for {
		line, err := a.in.ReadString('\n')
		term := strings.TrimSpace(line)
		if term == "" {
			break
		}
		seq++
		n := seq
		d.Trigger(ctx, func(ctx context.Context) {
			tasks, err := api.ListTasks(ctx, models.TaskFilter{Search: term})
			mu.Lock()
			defer mu.Unlock()
			// A superseded lookup must not print.
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				fmt.Fprintf(a.out, "results for %q:\n", term)
				a.printTasks(tasks)
			}
			latest = result{seq: n, err: err}
			select {
			case finished <- struct{}{}:
			default:
			}
		})
		if err != nil {
			break
		}
	}
	if seq == 0 {
		return nil
	}

	timeout := time.After(a.delay + 10*time.Second)
	for {
		mu.Lock()
		r := latest
		mu.Unlock()
		if r.seq == seq {
			return r.err
		}
		select {
		case <-finished:
		case <-timeout:
			return errors.New("search timed out")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *App) printTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, t.CreatedAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

func (a *App) printProfile(u models.User) {
	fmt.Fprintf(a.out, "Name:   %s\nEmail:  %s\nBio:    %s\nSkills: %s\n", u.Name, u.Email, u.Bio, strings.Join(u.Skills, ", "))
}

func taskIDArg(args []string) (uuid.UUID, []string, error) {
	if len(args) == 0 {
		return uuid.Nil, nil, errors.New("task id is required")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, args[1:], nil
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: taskctl [--server URL] [--session-db PATH] <command> [flags]

commands:
  register     create an account
  login        log in and remember the session
  logout       forget the saved session
  whoami       show the logged in user
  profile      show your profile
  profile-set  update name, bio or skills
  add          create a task
  list         list tasks (--search, --status)
  edit ID      change a task's title, description or status
  toggle ID    flip a task between pending and completed
  rm ID        delete a task
  stats        count tasks by status
  search       interactive title search
`)
}
