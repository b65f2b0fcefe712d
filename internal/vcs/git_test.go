package vcs_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"nymedit/internal/testutil"
	"nymedit/internal/vcs"
)

func TestGit_CommandVectors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(g *vcs.Git) error
		cwd  string
		want []string
	}{
		{
			name: "clone",
			call: func(g *vcs.Git) error {
				_, err := g.Clone(ctx, "/users", "ssh://host/repo.git", "ingrid")
				return err
			},
			cwd:  "/users",
			want: []string{"git", "clone", "ssh://host/repo.git", "ingrid"},
		},
		{
			name: "config",
			call: func(g *vcs.Git) error {
				_, err := g.Config(ctx, "/users/ingrid", "push.default", "simple")
				return err
			},
			cwd:  "/users/ingrid",
			want: []string{"git", "config", "push.default", "simple"},
		},
		{
			name: "create branch",
			call: func(g *vcs.Git) error {
				_, err := g.CreateBranch(ctx, "/users/ingrid", "ingrid")
				return err
			},
			cwd:  "/users/ingrid",
			want: []string{"git", "checkout", "-b", "ingrid"},
		},
		{
			name: "checkout branch",
			call: func(g *vcs.Git) error {
				_, err := g.CheckoutBranch(ctx, "/users/ingrid", "ingrid")
				return err
			},
			cwd:  "/users/ingrid",
			want: []string{"git", "checkout", "ingrid"},
		},
		{
			name: "add",
			call: func(g *vcs.Git) error {
				_, err := g.Add(ctx, "/users/ingrid", "CNFs/a/an/ann/anne.xml")
				return err
			},
			cwd:  "/users/ingrid",
			want: []string{"git", "add", "CNFs/a/an/ann/anne.xml"},
		},
		{
			name: "commit",
			call: func(g *vcs.Git) error {
				_, err := g.Commit(ctx, "/users/ingrid", "Ingrid <i@example.org>", "Added CNFs/a/an/ann/anne.xml", "CNFs/a/an/ann/anne.xml")
				return err
			},
			cwd:  "/users/ingrid",
			want: []string{"git", "commit", "--author", "Ingrid <i@example.org>", "-m", "Added CNFs/a/an/ann/anne.xml", "CNFs/a/an/ann/anne.xml"},
		},
		{
			name: "pull",
			call: func(g *vcs.Git) error {
				_, err := g.Pull(ctx, "/users/ingrid", "origin", "master")
				return err
			},
			cwd:  "/users/ingrid",
			want: []string{"git", "pull", "origin", "master"},
		},
		{
			name: "push",
			call: func(g *vcs.Git) error {
				_, err := g.Push(ctx, "/users/ingrid", "origin", "ingrid:ingrid")
				return err
			},
			cwd:  "/users/ingrid",
			want: []string{"git", "push", "origin", "ingrid:ingrid"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := testutil.NewFakeRunner()
			g := vcs.New(runner, 60*time.Second)

			if err := tc.call(g); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if len(runner.Invocations) != 1 {
				t.Fatalf("invocations = %d, want 1", len(runner.Invocations))
			}
			inv := runner.Invocations[0]
			if !reflect.DeepEqual(inv.Args, tc.want) {
				t.Errorf("argv = %v, want %v", inv.Args, tc.want)
			}
			if inv.Cwd != tc.cwd {
				t.Errorf("cwd = %q, want %q", inv.Cwd, tc.cwd)
			}
			if inv.Timeout != 60*time.Second {
				t.Errorf("timeout = %s, want 60s", inv.Timeout)
			}
		})
	}
}

func TestGit_ConfigUser(t *testing.T) {
	runner := testutil.NewFakeRunner()
	g := vcs.New(runner, 60*time.Second)

	transcripts, err := g.ConfigUser(context.Background(), "/users/ingrid", "Ingrid", "i@example.org")
	if err != nil {
		t.Fatalf("ConfigUser() error = %v", err)
	}
	if len(transcripts) != 2 {
		t.Errorf("transcripts = %d, want 2", len(transcripts))
	}

	want := []string{
		"git config user.name Ingrid",
		"git config user.email i@example.org",
	}
	if got := runner.CommandLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %v, want %v", got, want)
	}
}
