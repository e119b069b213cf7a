package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rocket-admin/internal/auth"
)

const minPasswordLength = 8

func newCreateUserCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Add an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if email == "" {
				if err := survey.AskOne(&survey.Input{Message: "Email:"}, &email, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}
			if password == "" {
				p, err := promptNewPassword()
				if err != nil {
					return err
				}
				password = p
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.bootstrap(ctx); err != nil {
				return err
			}

			user, err := rt.store.CreateUser(ctx, email, hash)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address of the new admin")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for a password",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptNewPassword()
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func promptNewPassword() (string, error) {
	var password, confirm string
	if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password,
		survey.WithValidator(survey.ComposeValidators(survey.Required, survey.MinLength(minPasswordLength), survey.MaxLength(72)))); err != nil {
		return "", err
	}
	if err := survey.AskOne(&survey.Password{Message: "Confirm password:"}, &confirm); err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
