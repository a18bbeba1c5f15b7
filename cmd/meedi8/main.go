package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"meedi8/backend/internal/client"
	"meedi8/backend/internal/phase"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var serverURL string
	var sessionPath string

	root := &cobra.Command{
		Use:           "meedi8",
		Short:         "Meedi8 conflict mediation, from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Meedi8 server URL")
	root.PersistentFlags().StringVar(&sessionPath, "session", defaultSessionPath(), "session token file")

	root.AddCommand(newSignupCmd(&serverURL, &sessionPath))
	root.AddCommand(newLoginCmd(&serverURL, &sessionPath))
	root.AddCommand(newWhoamiCmd(&serverURL, &sessionPath))
	root.AddCommand(newLogoutCmd(&sessionPath))
	root.AddCommand(newRoomsCmd(&serverURL, &sessionPath))
	root.AddCommand(newStartCmd(&serverURL, &sessionPath))
	root.AddCommand(newJoinCmd(&serverURL, &sessionPath))
	root.AddCommand(newDeleteCmd(&serverURL, &sessionPath))
	root.AddCommand(newAdvanceCmd(&serverURL, &sessionPath))
	root.AddCommand(newWatchCmd(&serverURL, &sessionPath))
	return root
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".meedi8-session"
	}
	return filepath.Join(home, ".meedi8", "session")
}

func loadClient(serverURL, sessionPath string) (*client.Client, error) {
	sess := client.NewSession(sessionPath)
	if err := sess.Init(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return client.New(serverURL, sess), nil
}

func newSignupCmd(serverURL, sessionPath *string) *cobra.Command {
	var email, password, name string
	var topics []string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			userID, err := c.Signup(cmd.Context(), email, password, name, topics)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! Account %s created and signed in.\n", name, userID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (min 8 characters)")
	cmd.Flags().StringVar(&name, "name", "", "display name shown to the other party")
	cmd.Flags().StringSliceVar(&topics, "topics", nil, "conflict areas you want help with (e.g. chores,money)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newWhoamiCmd(serverURL, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			user, err := c.Profile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
			if len(user.Topics) > 0 {
				_, _ = fmt.Fprintf(out, "topics: %s\n", strings.Join(user.Topics, ", "))
			}
			return nil
		},
	}
}

func newLoginCmd(serverURL, sessionPath *string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			if _, err := c.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := client.NewSession(*sessionPath)
			if err := sess.Init(); err != nil {
				return err
			}
			if err := sess.Teardown(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newRoomsCmd(serverURL, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List your mediation rooms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			rooms, err := c.ListRooms(cmd.Context())
			if err != nil {
				return err
			}
			if len(rooms) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No rooms yet. Try: meedi8 start --title \"...\"")
				return nil
			}
			for i := range rooms {
				room := &rooms[i]
				d := phase.Describe(room.Phase, phase.RoleFor(room.IsUser1))
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-28s %s\n", room.ID, room.Title, d.Label)
			}
			return nil
		},
	}
}

func newStartCmd(serverURL, sessionPath *string) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new mediation and print the invite link",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			room, err := c.CreateRoom(cmd.Context(), title, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Room %s created. You are in coaching now.\n", room.ID)
			_, _ = fmt.Fprintf(out, "Invite the other person with:\n\n  meedi8 join %s\n", room.InviteToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "what the mediation is about")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newJoinCmd(serverURL, sessionPath *string) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "join <invite-token>",
		Short: "Join a mediation you were invited to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			if preview {
				room, err := c.JoinPreview(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s invites you to talk about %q.\n", room.User1Name, room.Title)
				return nil
			}
			room, err := c.Join(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Joined %q. Run: meedi8 watch %s\n", room.Title, room.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "show the invitation without joining")
	return cmd
}

func newDeleteCmd(serverURL, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <room-id>",
		Short: "Delete a room and its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			if err := c.DeleteRoom(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Room deleted.")
			return nil
		},
	}
}

func newAdvanceCmd(serverURL, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <room-id> <event>",
		Short: "Request a phase transition (start_coaching, complete_coaching, begin_session, resolve)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			next, err := c.Advance(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Room is now in %s.\n", next)
			return nil
		},
	}
}

func newWatchCmd(serverURL, sessionPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <room-id>",
		Short: "Follow a room's phase live until the main room opens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadClient(*serverURL, *sessionPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			return runWatch(ctx, c, args[0])
		},
	}
}

// shared by watch and the room listing
func formatAge(t time.Time) string {
	return t.Local().Format("Jan 2 15:04")
}
