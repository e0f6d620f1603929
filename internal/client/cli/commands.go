package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/Samuel-SouzaZz/devquest/internal/client/api"
	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
)

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.authService.Authenticated(ctx)
}

func (a *App) getStatus() string {
	s := string(a.Mode)
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Register(ctx context.Context) error {
	name, err := a.prompt("Name")
	if err != nil {
		return err
	}
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Password")
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, name, email, string(password)); err != nil {
		printlnFn("Registration failed:", err)
		return err
	}
	printlnFn("Registered and logged in.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Password")
	if err != nil {
		return err
	}

	if err := a.authService.Login(ctx, email, string(password)); err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			printlnFn("Server unreachable; try again when online.")
		} else {
			printlnFn("Login failed:", err)
		}
		return err
	}
	printlnFn("Logged in.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err)
		return err
	}
	printlnFn("Logged out. Queued offline work is kept.")
	return nil
}

func (a *App) Create(ctx context.Context) error {
	var p models.ChallengePayload

	title, err := a.prompt("Title")
	if err != nil {
		return err
	}
	p.Title = title

	p.Description, err = a.prompt("Description")
	if err != nil {
		return err
	}

	difficulty, err := a.prompt("Difficulty (easy/medium/hard)")
	if err != nil {
		return err
	}
	p.Difficulty = models.Difficulty(difficulty)

	p.Language, err = a.prompt("Language")
	if err != nil {
		return err
	}

	p.CodeTemplate, err = a.prompt("Code template")
	if err != nil {
		return err
	}

	p.GroupID, err = a.prompt("Group id (empty for standalone)")
	if err != nil {
		return err
	}

	p.XP, err = a.promptInt("XP", 100)
	if err != nil {
		return err
	}
	p.Visibility = models.VisibilityPublic

	view, err := a.challengeService.Create(ctx, p)
	if err != nil {
		printlnFn("Create failed:", err)
		return err
	}

	if view.Pending {
		printlnFn(fmt.Sprintf("Saved offline as %s; it will sync automatically.", view.ID))
	} else {
		printlnFn(fmt.Sprintf("Created challenge %s.", view.ID))
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	items, err := a.challengeService.List(ctx)
	if err != nil {
		printlnFn("List failed:", err)
		return err
	}

	for _, item := range items {
		tag := ""
		if item.Pending {
			tag = " [pending sync]"
		}
		printlnFn(fmt.Sprintf("%s  %-30s %-8s %-10s %d XP%s", item.ID, item.Title, item.Difficulty, item.Language, item.XP, tag))
	}
	printlnFn(fmt.Sprintf("%d challenge(s)", len(items)))
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	res, err := a.syncer.Run(ctx)
	if err != nil {
		printlnFn("Sync failed:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Sync finished: %d succeeded, %d failed.", res.Success, res.Failed))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	if a.monitor.IsOnline(ctx) {
		a.setMode(ModeOnline)
	} else {
		a.setMode(ModeOffline)
	}

	count, err := a.challengeService.PendingCount(ctx)
	if err != nil {
		printlnFn("Status failed:", err)
		return err
	}

	session := "logged out"
	if a.isLoggedIn(ctx) {
		session = "logged in"
		if a.authService.TokenExpired(ctx) {
			session = "logged in (token expired, will refresh)"
		}
	}

	printlnFn(fmt.Sprintf("Mode: %s, %s, pending writes: %d", a.Mode, session, count))
	return nil
}
