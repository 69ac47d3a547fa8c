package cli

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/sweetshop/internal/application/dialog"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
)

func (a *App) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión y guarda el token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if username, err = a.valueOr(username, "Username", false); err != nil {
				return err
			}
			if password, err = a.valueOr(password, "Password", true); err != nil {
				return err
			}
			user, err := a.session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			a.ui.Success("Welcome, %s! (%s)", user.Username, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "usuario")
	cmd.Flags().StringVarP(&password, "password", "p", "", "contraseña (se pide si se omite)")
	return cmd
}

func (a *App) registerCmd() *cobra.Command {
	var in repository.Registration
	var admin bool
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Crea una cuenta e inicia sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Username, err = a.valueOr(in.Username, "Username", false); err != nil {
				return err
			}
			if in.Email, err = a.valueOr(in.Email, "Email", false); err != nil {
				return err
			}
			if in.Password, err = a.valueOr(in.Password, "Password", true); err != nil {
				return err
			}
			in.Role = entity.RoleUser
			if admin {
				in.Role = entity.RoleAdmin
			}
			user, err := a.session.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.ui.Success("Account created. Welcome, %s! (%s)", user.Username, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "usuario")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "correo")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "contraseña, mínimo 8 caracteres")
	cmd.Flags().BoolVar(&admin, "admin", false, "registrar como administrador")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión y borra el token guardado",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.ui.Success("Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Muestra el usuario de la sesión guardada",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			user, err := a.requireSession()
			if err != nil {
				return err
			}
			a.ui.Info("%s <%s> (%s)", user.Username, user.Email, user.Role)
			return nil
		},
	}
}

func (a *App) forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password [email]",
		Short: "Solicita el enlace para restablecer la contraseña",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email string
			if len(args) == 1 {
				email = args[0]
			}
			email, err := a.valueOr(email, "Email", false)
			if err != nil {
				return err
			}
			ticket, err := a.session.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return err
			}
			a.ui.Success("%s", ticket.Message)
			// Solo en desarrollo: se muestra, nunca se guarda ni se usa solo.
			if ticket.Token != "" {
				a.ui.Warn("Reset token (development only): %s", ticket.Token)
				a.ui.Info("Run `sweetshop reset-password --token %s`", ticket.Token)
			}
			return nil
		},
	}
}

func (a *App) resetPasswordCmd() *cobra.Command {
	var token, password, confirm string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Fija una nueva contraseña con el token del enlace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := dialog.NewPasswordResetForm(token)
			var err error
			if form.NewPassword, err = a.valueOr(password, "New password", true); err != nil {
				return err
			}
			if form.Confirm, err = a.valueOr(confirm, "Confirm password", true); err != nil {
				return err
			}
			msg, err := form.Submit(cmd.Context(), a.session)
			if err != nil {
				return err
			}
			a.ui.Success("%s", msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token del enlace de restablecimiento")
	cmd.Flags().StringVar(&password, "password", "", "nueva contraseña (se pide si se omite)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "confirmación (se pide si se omite)")
	return cmd
}
