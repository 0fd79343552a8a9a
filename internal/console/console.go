// Package console is the interactive terminal front end. It drives the same
// user and diagnosis services as the HTTP API in a single process, holding
// the logged-in user in an explicit session struct rather than globals.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/ch4uTR/TarimKocum/internal/services"
	"github.com/ch4uTR/TarimKocum/internal/store"
	"github.com/ch4uTR/TarimKocum/types"
)

var contentTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// session holds the state of one console run. It is passed to every action
// explicitly instead of living in package-level variables.
type session struct {
	user *types.User
}

// Console runs the interactive loop.
type Console struct {
	users     *services.UserService
	diagnoses *services.DiagnosisService
	in        *bufio.Reader
	out       io.Writer
}

// New constructs a Console over stdin/stdout.
func New(users *services.UserService, diagnoses *services.DiagnosisService) *Console {
	return &Console{
		users:     users,
		diagnoses: diagnoses,
		in:        bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
}

// Run loops until the user quits or input ends.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Tarım Koçum")

	sess := &session{}
	for {
		if sess.user == nil {
			if err := c.authMenu(ctx, sess); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			continue
		}

		fmt.Fprintf(c.out, "\n[%s] diagnose <path> | list | logout | quit\n> ", sess.user.Username)
		line, err := c.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "diagnose":
			if len(fields) < 2 {
				fmt.Fprintln(c.out, "usage: diagnose <image path>")
				continue
			}
			c.diagnose(ctx, sess, fields[1])
		case "list":
			c.list(ctx, sess)
		case "logout":
			sess.user = nil
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(c.out, "unknown command: %s\n", fields[0])
		}
	}
}

func (c *Console) authMenu(ctx context.Context, sess *session) error {
	fmt.Fprint(c.out, "\nlogin | signup | quit\n> ")
	line, err := c.in.ReadString('\n')
	if err != nil {
		return err
	}

	switch strings.TrimSpace(line) {
	case "login":
		return c.login(ctx, sess)
	case "signup":
		return c.signup(ctx)
	case "quit", "exit":
		return io.EOF
	default:
		return nil
	}
}

func (c *Console) login(ctx context.Context, sess *session) error {
	username, err := c.prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := c.promptPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := c.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fmt.Fprintln(c.out, "Incorrect username or password.")
			return nil
		}
		return err
	}

	sess.user = &user
	fmt.Fprintf(c.out, "Welcome, %s.\n", user.Username)
	return nil
}

func (c *Console) signup(ctx context.Context) error {
	username, err := c.prompt("Username: ")
	if err != nil {
		return err
	}
	email, err := c.prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := c.promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := c.promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		fmt.Fprintln(c.out, "Passwords do not match.")
		return nil
	}

	if _, err := c.users.Register(ctx, services.RegisterParams{
		Username: username,
		Email:    email,
		Password: password,
	}); err != nil {
		if errors.Is(err, store.ErrConflict) {
			fmt.Fprintln(c.out, "Username or email already registered.")
			return nil
		}
		return err
	}

	fmt.Fprintln(c.out, "Account created. Please log in.")
	return nil
}

func (c *Console) diagnose(ctx context.Context, sess *session, path string) {
	contentType, ok := contentTypeByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		fmt.Fprintln(c.out, "Only .jpg, .jpeg and .png files are supported.")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.out, "Could not read %s: %v\n", path, err)
		return
	}

	plant, err := c.diagnoses.Diagnose(ctx, sess.user.ID, filepath.Base(path), contentType, data)
	if err != nil {
		fmt.Fprintf(c.out, "Diagnosis failed: %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Disease: %s\n", plant.PredictedDisease)
	fmt.Fprintf(c.out, "Description: %s\n", plant.DiseaseDescription)
	fmt.Fprintf(c.out, "Saved as record %d (%s)\n", plant.ID, plant.FilePath)
}

func (c *Console) list(ctx context.Context, sess *session) {
	plants, err := c.diagnoses.List(ctx, sess.user.ID)
	if err != nil {
		fmt.Fprintf(c.out, "Could not list diagnoses: %v\n", err)
		return
	}
	if len(plants) == 0 {
		fmt.Fprintln(c.out, "No diagnoses yet.")
		return
	}
	for _, plant := range plants {
		fmt.Fprintf(c.out, "%d\t%s\t%s\n", plant.ID, plant.PredictedDisease, plant.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) promptPassword(label string) (string, error) {
	fmt.Fprint(c.out, label)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return string(password), nil
}
