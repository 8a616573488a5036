package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

var (
	roleEmail string
	roleName  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userRoleCmd = &cobra.Command{
	Use:   "role",
	Short: "Set a user's role",
	Long:  `Set the role of an existing user to "user" or "admin". This is the only way to create admins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := service.NewUserService(db.Users()).SetRole(ctx, roleEmail, domain.Role(roleName))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no user with email %q", roleEmail)
			}
			return err
		}
		fmt.Printf("%s is now %s.\n", user.Email, user.Role)
		fmt.Println("Existing sessions keep their old role until the user signs in again.")
		return nil
	},
}

func init() {
	userRoleCmd.Flags().StringVar(&roleEmail, "email", "", "email of the user")
	userRoleCmd.Flags().StringVar(&roleName, "role", string(domain.RoleAdmin), "role to assign: user or admin")
	_ = userRoleCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userRoleCmd)
}
