package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"handoc/internal/client"
)

// prompt reads one line from in when value is empty.
func prompt(in *bufio.Reader, out io.Writer, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(out, "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	return line, nil
}

func loginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email, err = prompt(in, cmd.OutOrStdout(), "이메일", email); err != nil {
				return err
			}
			if password, err = prompt(in, cmd.OutOrStdout(), "비밀번호", password); err != nil {
				return err
			}
			tok, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			name := email
			if tok.User != nil && tok.User.Username != "" {
				name = tok.User.Username
			}
			success(cmd.OutOrStdout(), "%s님, 환영합니다!", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			u, err := a.api.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "회원가입이 완료되었습니다: %s (%s)", u.Username, u.Email)
			fmt.Fprintln(cmd.OutOrStdout(), "`handoc login`으로 로그인하세요.")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Email, "email", "e", "", "account email")
	f.StringVarP(&req.Username, "username", "u", "", "username (3-20 chars: letters, digits, _ or -)")
	f.StringVarP(&req.Password, "password", "p", "", "password (min 8 chars, letters and digits)")
	f.StringVar(&req.ConfirmPassword, "confirm-password", "", "password confirmation (defaults to --password)")
	f.StringVar(&req.FullName, "full-name", "", "full name")
	f.StringVar(&req.Language, "language", "ko", "preferred language")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Logout(cmd.Context()); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "로그아웃되었습니다")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.api.Restore(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "사용자\t%s\n", u.Username)
			fmt.Fprintf(tw, "이메일\t%s\n", u.Email)
			plan := "무료"
			if u.IsPremium {
				plan = "프리미엄"
			}
			fmt.Fprintf(tw, "요금제\t%s\n", plan)
			fmt.Fprintf(tw, "언어\t%s\n", u.Language)
			return tw.Flush()
		},
	}
}

func passwordResetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password-reset",
		Short: "Request or confirm a password reset",
	}

	request := &cobra.Command{
		Use:   "request <email>",
		Short: "Send a reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.api.RequestPasswordReset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	var newPassword, confirmPassword string
	confirm := &cobra.Command{
		Use:   "confirm <token>",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirmPassword == "" {
				confirmPassword = newPassword
			}
			if err := a.api.ConfirmPasswordReset(cmd.Context(), args[0], newPassword, confirmPassword); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "비밀번호가 변경되었습니다")
			return nil
		},
	}
	confirm.Flags().StringVarP(&newPassword, "new-password", "p", "", "new password")
	confirm.Flags().StringVar(&confirmPassword, "confirm-password", "", "password confirmation (defaults to --new-password)")
	_ = confirm.MarkFlagRequired("new-password")

	cmd.AddCommand(request, confirm)
	return cmd
}
