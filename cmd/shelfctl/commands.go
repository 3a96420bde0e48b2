package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gameshelf/backend/pkg/failure"
	"gameshelf/backend/pkg/optimistic"
	"gameshelf/backend/pkg/shelf"

	"github.com/spf13/cobra"
)

func parseID(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return uint(id), nil
}

func parsePosition(arg string) (int, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	return pos, nil
}

// fail prints the user-facing message of err.
func (a *app) fail(err error) error {
	fmt.Fprintln(a.errOut, failure.UserMessage(err))
	return errReported
}

// settle prints a confirmed value. Other outcomes were already reported by the notifier.
func settle[V any](a *app, res optimistic.Result[V], show func(V) string) error {
	switch res.Status {
	case optimistic.Confirmed:
		fmt.Fprintln(a.out, show(res.Value))
		return nil
	case optimistic.Ignored:
		return errors.New("a change to the same item is still pending")
	case optimistic.Discarded:
		return errors.New("session changed before the server answered")
	default:
		return errReported
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <name> <email> <password>",
		Short: "Create an account and print its token",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Register(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, res.Token)
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <name-or-email> <password>",
		Short: "Print a token for SHELF_TOKEN",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, res.Token)
			return nil
		},
	}
}

func newStatusCmd(a *app, status shelf.Status) *cobra.Command {
	return &cobra.Command{
		Use:   string(status) + " <gameID>",
		Short: fmt.Sprintf("Toggle the %s mark on a game", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := parseID(args[0], "game id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.session.LoadGame(ctx, gameID); err != nil {
				return a.fail(err)
			}
			res := a.session.ToggleStatus(ctx, status, gameID)
			return settle(a, res, func(active bool) string {
				state := "off"
				if active {
					state = "on"
				}
				return fmt.Sprintf("%s game %d: %s", status, gameID, state)
			})
		},
	}
}

func newLikeCmd(a *app) *cobra.Command {
	var authorID, gameID uint
	cmd := &cobra.Command{
		Use:   "like <reviewID>",
		Short: "Toggle your like on a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewID, err := parseID(args[0], "review id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if gameID != 0 {
				reviews, err := a.session.LoadReviews(ctx, gameID)
				if err != nil {
					return a.fail(err)
				}
				for _, r := range reviews {
					if r.ID == reviewID && authorID == 0 {
						authorID = r.User.ID
					}
				}
			}
			res := a.session.ToggleReviewLike(ctx, shelf.ReviewRef{ID: reviewID, AuthorID: authorID})
			return settle(a, res, func(l shelf.Like) string {
				state := "not liked"
				if l.Liked {
					state = "liked"
				}
				return fmt.Sprintf("review %d: %d likes, %s", reviewID, l.Count, state)
			})
		},
	}
	cmd.Flags().UintVar(&authorID, "author", 0, "id of the review's author")
	cmd.Flags().UintVar(&gameID, "game", 0, "game the review belongs to, loads the current like count")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage your game lists",
	}

	// load seeds the session before any list command runs.
	load := func(ctx context.Context) error {
		if _, err := a.session.LoadLists(ctx); err != nil {
			return a.fail(err)
		}
		return nil
	}
	showLists := func(lists []shelf.List) string {
		out := ""
		for i, l := range lists {
			if i > 0 {
				out += "\n"
			}
			out += fmt.Sprintf("%d\t%s", l.ID, l.Name)
		}
		return out
	}
	membership := func(listID, gameID uint) func(bool) string {
		return func(member bool) string {
			if member {
				return fmt.Sprintf("game %d is in list %d", gameID, listID)
			}
			return fmt.Sprintf("game %d is not in list %d", gameID, listID)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print your lists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := load(cmd.Context()); err != nil {
					return err
				}
				if lists := a.session.Lists(); len(lists) > 0 {
					fmt.Fprintln(a.out, showLists(lists))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := load(cmd.Context()); err != nil {
					return err
				}
				return settle(a, a.session.CreateList(cmd.Context(), args[0]), showLists)
			},
		},
		&cobra.Command{
			Use:   "rename <listID> <name>",
			Short: "Rename a list",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				listID, err := parseID(args[0], "list id")
				if err != nil {
					return err
				}
				if err := load(cmd.Context()); err != nil {
					return err
				}
				return settle(a, a.session.RenameList(cmd.Context(), listID, args[1]), showLists)
			},
		},
		&cobra.Command{
			Use:   "delete <listID>",
			Short: "Delete a list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				listID, err := parseID(args[0], "list id")
				if err != nil {
					return err
				}
				if err := load(cmd.Context()); err != nil {
					return err
				}
				return settle(a, a.session.DeleteList(cmd.Context(), listID), showLists)
			},
		},
		&cobra.Command{
			Use:   "add <listID> <gameID>",
			Short: "Add a game to a list",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				listID, gameID, err := listAndGame(args)
				if err != nil {
					return err
				}
				if err := load(cmd.Context()); err != nil {
					return err
				}
				res := a.session.AddToList(cmd.Context(), listID, gameID)
				return settle(a, res, membership(listID, gameID))
			},
		},
		&cobra.Command{
			Use:   "remove <listID> <gameID>",
			Short: "Remove a game from a list",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				listID, gameID, err := listAndGame(args)
				if err != nil {
					return err
				}
				if err := load(cmd.Context()); err != nil {
					return err
				}
				res := a.session.RemoveFromList(cmd.Context(), listID, gameID)
				return settle(a, res, membership(listID, gameID))
			},
		},
	)
	return cmd
}

func listAndGame(args []string) (uint, uint, error) {
	listID, err := parseID(args[0], "list id")
	if err != nil {
		return 0, 0, err
	}
	gameID, err := parseID(args[1], "game id")
	if err != nil {
		return 0, 0, err
	}
	return listID, gameID, nil
}

func showSlots(s shelf.Slots) string {
	out := ""
	for pos := 1; pos <= shelf.HallOfFameSize; pos++ {
		if pos > 1 {
			out += "\n"
		}
		if id := s.At(pos); id != 0 {
			out += fmt.Sprintf("%d. game %d", pos, id)
		} else {
			out += fmt.Sprintf("%d. -", pos)
		}
	}
	return out
}

func newHallOfFameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hof",
		Aliases: []string{"hall-of-fame"},
		Short:   "Arrange your Hall of Fame",
	}
	load := func(ctx context.Context) error {
		if _, err := a.session.LoadHallOfFame(ctx); err != nil {
			return a.fail(err)
		}
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the showcase",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := load(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(a.out, showSlots(a.session.HallOfFame()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "swap <from> <to>",
			Short: "Drag the game at one position onto another",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				from, err := parsePosition(args[0])
				if err != nil {
					return err
				}
				to, err := parsePosition(args[1])
				if err != nil {
					return err
				}
				if err := load(cmd.Context()); err != nil {
					return err
				}
				return settle(a, a.session.DropHallOfFame(cmd.Context(), from, to), showSlots)
			},
		},
		&cobra.Command{
			Use:   "place <position> <gameID>",
			Short: "Put a game at a position",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pos, err := parsePosition(args[0])
				if err != nil {
					return err
				}
				gameID, err := parseID(args[1], "game id")
				if err != nil {
					return err
				}
				if err := load(cmd.Context()); err != nil {
					return err
				}
				return settle(a, a.session.PlaceInHallOfFame(cmd.Context(), pos, gameID), showSlots)
			},
		},
		&cobra.Command{
			Use:   "clear <position>",
			Short: "Empty a position",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pos, err := parsePosition(args[0])
				if err != nil {
					return err
				}
				if err := load(cmd.Context()); err != nil {
					return err
				}
				return settle(a, a.session.RemoveFromHallOfFame(cmd.Context(), pos), showSlots)
			},
		},
	)
	return cmd
}
