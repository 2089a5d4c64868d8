package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ingetuto/ingetuto-api/internal/client"
	"github.com/ingetuto/ingetuto-api/internal/domain"
)

var errUsage = errors.New("wrong arguments, run tutorctl --help")

type commandEnv struct {
	c       *client.Client
	session *client.Session
	out     io.Writer
}

func (e *commandEnv) print(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *commandEnv) requireLogin() error {
	if !e.session.IsAuthenticated() {
		return fmt.Errorf("%w: run tutorctl login-callback <token> first", client.ErrNotAuthenticated)
	}

	return nil
}

func dispatch(ctx context.Context, e *commandEnv, cmd string, args []string) error {
	switch cmd {
	case "login-callback":
		if len(args) != 1 {
			return errUsage
		}
		if err := e.session.HandleLoginCallback(ctx, args[0]); err != nil {
			return err
		}
		user, _ := e.session.User()
		slog.Info("signed in", "email", user.Email, "role", e.session.ActiveRole())
		if e.session.NeedsPhoneNumber() {
			slog.Warn("no phone number on file, run tutorctl phone <number>")
		}
		return nil

	case "logout":
		return e.session.Logout(ctx)
	}

	if err := e.requireLogin(); err != nil {
		return err
	}

	switch cmd {
	case "me":
		user, _ := e.session.User()
		return e.print(client.Me{User: user, ActiveRole: e.session.ActiveRole()})

	case "switch-role":
		if len(args) != 1 {
			return errUsage
		}
		if err := e.session.SwitchRole(ctx, strings.ToUpper(args[0])); err != nil {
			return err
		}
		slog.Info("role switched", "role", e.session.ActiveRole())
		return nil

	case "phone":
		if len(args) != 1 {
			return errUsage
		}
		return e.session.UpdatePhoneNumber(ctx, args[0])

	case "subjects":
		subjects, err := e.c.Subjects.List(ctx)
		if err != nil {
			return err
		}
		return e.print(subjects)

	case "availability":
		return e.availability(ctx, args)

	case "sessions":
		return e.sessions(ctx, args)

	case "requests":
		return e.requests(ctx)

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (e *commandEnv) availability(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}

	subjectID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("subject id: %w", err)
	}
	from, err := domain.ParseDate(args[1])
	if err != nil {
		return err
	}
	to, err := domain.ParseDate(args[2])
	if err != nil {
		return err
	}

	blocks, err := e.c.Availability.BySubject(ctx, uint(subjectID), from, to)
	if err != nil {
		return err
	}

	return e.print(blocks)
}

func (e *commandEnv) sessions(ctx context.Context, args []string) error {
	states := make([]domain.SessionStatus, 0, len(args))
	for _, a := range args {
		states = append(states, domain.SessionStatus(strings.ToUpper(a)))
	}

	var (
		sessions []domain.TutoringSession
		err      error
	)
	switch e.session.ActiveRole() {
	case domain.RoleTutor:
		sessions, err = e.c.Tutoring.Assigned(ctx, states...)
	case domain.RoleWellbeing:
		sessions, err = e.c.Tutoring.PendingReview(ctx)
	default:
		sessions, err = e.c.Tutoring.Mine(ctx, states...)
	}
	if err != nil {
		return err
	}

	return e.print(sessions)
}

func (e *commandEnv) requests(ctx context.Context) error {
	var (
		reqs []domain.TutorRequest
		err  error
	)
	if e.session.ActiveRole() == domain.RoleWellbeing {
		reqs, err = e.c.TutorRequests.Pending(ctx)
	} else {
		reqs, err = e.c.TutorRequests.Mine(ctx)
	}
	if err != nil {
		return err
	}

	return e.print(reqs)
}
