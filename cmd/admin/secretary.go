package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/repository"
)

const minPasswordLength = 6

// validate applies the same rules as the HTTP binding tags
var validate = validator.New()

var createSecretaryCmd = &cobra.Command{
	Use:   "create-secretary",
	Short: "Create a secretariat account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")
		password, _ := cmd.Flags().GetString("password")

		if email == "" {
			var err error
			if email, err = (&promptui.Prompt{Label: "Email", Validate: validateEmail}).Run(); err != nil {
				return err
			}
		} else if err := validateEmail(email); err != nil {
			return err
		}

		if password == "" {
			var err error
			prompt := promptui.Prompt{Label: "Password", Mask: '*', Validate: validatePassword}
			if password, err = prompt.Run(); err != nil {
				return err
			}
		} else if err := validatePassword(password); err != nil {
			return err
		}

		log, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating a logger: %w", err)
		}
		defer log.Sync()

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		secretary := &models.Secretary{
			FirstName:    firstName,
			LastName:     lastName,
			Email:        strings.TrimSpace(email),
			PasswordHash: hash,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		repos := repository.NewRepositories(db.DB)
		if err := repos.Secretary.Create(ctx, secretary); err != nil {
			return err
		}

		log.Info("secretary created", "secretary_id", secretary.ID.String(), "email", secretary.Email)
		return nil
	},
}

func validateEmail(input string) error {
	if err := validate.Var(strings.TrimSpace(input), "required,email"); err != nil {
		return fmt.Errorf("invalid email %q", input)
	}
	return nil
}

func validatePassword(input string) error {
	if len(input) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(createSecretaryCmd)

	createSecretaryCmd.Flags().StringP("email", "e", "", "secretary email (prompted when empty)")
	createSecretaryCmd.Flags().String("first-name", "", "first name")
	createSecretaryCmd.Flags().String("last-name", "", "last name")
	createSecretaryCmd.Flags().String("password", "", "password (prompted with masked input when empty)")
}
