package main

import (
	"errors"
	"fmt"

	"whisper-client/internal/dto"
	"whisper-client/internal/pkg/validation"
	"whisper-client/pkg/backend"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSignInCommand() *cobra.Command {
	req := &dto.SignInRequest{}

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to the transcription backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.AuthService.SignIn(cmd.Context(), req); err != nil {
				return describeError(err)
			}
			user := core.AuthService.CurrentUser()
			color.Green("✔ Signed in as %s", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Email (optional)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newSignUpCommand() *cobra.Command {
	req := &dto.SignUpRequest{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			strength := core.AuthService.PasswordStrength(req.Password)
			if err := core.AuthService.SignUp(cmd.Context(), req); err != nil {
				return describeError(err)
			}
			color.Green("✔ Account created for %s", req.Username)
			fmt.Printf("Password strength: %s (%d/4)\n", strength.Label, strength.Score)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			core.AuthService.Logout(cmd.Context())
			color.Yellow("Signed out")
			return nil
		},
	}
}

func newWhoAmICommand() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				if _, err := core.AuthService.Validate(cmd.Context()); err != nil {
					return describeError(err)
				}
			}
			state := core.AuthService.State()
			if !state.IsAuthenticated {
				color.Yellow("Not signed in")
				return nil
			}
			fmt.Printf("%s <%s>\n", state.User.Username, state.User.Email)
			fmt.Printf("Session expires %s\n", state.SessionExpiry.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "validate", false, "Re-check the session against the backend")

	return cmd
}

// describeError turns service errors into one readable line.
func describeError(err error) error {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return fmt.Errorf("%s %s", color.RedString("invalid input:"), vErr.Error())
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s %s", color.RedString("backend:"), apiErr.Detail)
	}
	return fmt.Errorf("%s %v", color.RedString("error:"), err)
}
