package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

var seedEmail string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample posts",
	Long: `Insert the built-in sample posts owned by an existing user. Posts whose
slug already exists are skipped, so the command can be re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		owner, err := db.Users().GetByEmail(ctx, service.NormalizeEmail(seedEmail))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no user with email %q; sign up first", seedEmail)
			}
			return fmt.Errorf("failed to look up owner: %w", err)
		}

		n, err := service.NewPostService(db.Posts()).Seed(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to seed posts: %w", err)
		}
		fmt.Printf("Seeded %d of %d sample posts for %s.\n", n, service.SamplePostCount(), owner.Email)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "email of the user who will own the posts")
	_ = seedCmd.MarkFlagRequired("email")
}
