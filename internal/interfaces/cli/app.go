// Package cli árbol de comandos de sweetshop. Cada comando es una acción de la
// pantalla principal; shell abre el dashboard interactivo.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jhoicas/sweetshop/internal/application/auth"
	"github.com/jhoicas/sweetshop/internal/application/dashboard"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/infrastructure/api"
	"github.com/jhoicas/sweetshop/internal/infrastructure/filestore"
	"github.com/jhoicas/sweetshop/internal/infrastructure/pdf"
	"github.com/jhoicas/sweetshop/pkg/config"
	"github.com/jhoicas/sweetshop/pkg/logger"
	"github.com/jhoicas/sweetshop/pkg/money"
)

// Options entrada y salida del CLI. In/Out/Err nil usan los del proceso.
type Options struct {
	Config *config.Config
	Logger *logger.Logger
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

// App dependencias compartidas por todos los comandos.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	rawIn   io.Reader
	in      *bufio.Reader
	ui      *ui
	session *auth.SessionStore
	sweets  *api.SweetRepository
	history *api.PurchaseHistoryRepository
}

// New construye el CLI sobre el cliente REST y la sesión en disco.
func New(opts Options) *App {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	cfg := opts.Config

	client := api.NewClient(api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout(),
		Logger:  log,
	})
	return &App{
		cfg:     cfg,
		log:     log,
		rawIn:   opts.In,
		in:      bufio.NewReader(opts.In),
		ui:      newUI(opts.Out, opts.Err, money.NewFormatter(cfg.App.Locale, cfg.App.Currency)),
		session: auth.NewSessionStore(api.NewAuthRepository(client), filestore.NewSessionStore(cfg.Session.File), log),
		sweets:  api.NewSweetRepository(client),
		history: api.NewPurchaseHistoryRepository(client),
	}
}

// Command árbol completo de comandos.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "sweetshop",
		Short:         "Sweet Shop: catálogo, compras e inventario desde la terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.session.Restore()
		},
	}
	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.forgotPasswordCmd(),
		a.resetPasswordCmd(),
		a.listCmd(),
		a.categoriesCmd(),
		a.buyCmd(),
		a.restockCmd(),
		a.addCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.historyCmd(),
		a.shellCmd(),
	)
	return root
}

// Execute ejecuta el comando y muestra el error al usuario.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.Command()
	root.SetArgs(args)
	root.SetOut(a.ui.out)
	root.SetErr(a.ui.errOut)
	err := root.ExecuteContext(ctx)
	if err != nil {
		a.ui.Error("%s", a.message(err))
	}
	return err
}

// message texto para el usuario a partir del error.
func (a *App) message(err error) string {
	var (
		uErr   *userError
		apiErr *domain.APIError
	)
	switch {
	case errors.As(err, &uErr):
		return uErr.msg
	case errors.Is(err, domain.ErrTransport):
		return fmt.Sprintf("Cannot reach the Sweet Shop API at %s", a.cfg.API.BaseURL)
	case errors.Is(err, domain.ErrNotFound) && !errors.As(err, &apiErr):
		return "Sweet not found in the current list"
	default:
		return domain.Detail(err, "")
	}
}

// ── Sesión ────────────────────────────────────────────────────────────────────

func (a *App) requireSession() (entity.Identity, error) {
	identity, ok := a.session.Identity()
	if !ok {
		return entity.Identity{}, &userError{msg: "Not logged in. Run `sweetshop login` first.", err: domain.ErrNotAuthenticated}
	}
	return identity, nil
}

// userError error con un texto propio para el usuario; conserva la causa para errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// dashboard monta el controlador con los criterios dados.
func (a *App) dashboard(ctx context.Context, criteria entity.FilterCriteria) (*dashboard.Controller, error) {
	if _, err := a.requireSession(); err != nil {
		return nil, err
	}
	ctrl := dashboard.New(dashboard.Deps{
		Session:  a.session,
		Sweets:   a.sweets,
		History:  a.history,
		Exporter: pdf.NewMarotoPDFGenerator(),
		Criteria: criteria,
		Debounce: a.cfg.Catalog.Debounce(),
		Logger:   a.log,
	})
	if err := ctrl.Mount(ctx); err != nil {
		ctrl.Close()
		return nil, a.bannerErr(ctrl, err)
	}
	return ctrl, nil
}

func (a *App) bannerErr(ctrl *dashboard.Controller, err error) error {
	if ctrl.NeedsLogin() {
		return &userError{msg: dashboard.BannerAuthFailed + " Run `sweetshop login`.", err: err}
	}
	if b := ctrl.Banner(); b != "" {
		return &userError{msg: b, err: err}
	}
	return err
}

// ── Entrada ───────────────────────────────────────────────────────────────────

var errInputClosed = errors.New("no input available")

// prompt lee una línea. Con etiqueta la muestra antes.
func (a *App) prompt(label string) (string, error) {
	if label != "" {
		fmt.Fprintf(a.ui.out, "%s: ", label)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword sin eco cuando la entrada es una terminal.
func (a *App) promptPassword(label string) (string, error) {
	if f, ok := a.rawIn.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(a.ui.out, "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.ui.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return a.prompt(label)
}

// valueOr devuelve v o, si está vacío, lo pide por la entrada.
func (a *App) valueOr(v, label string, secret bool) (string, error) {
	if v != "" {
		return v, nil
	}
	if secret {
		return a.promptPassword(label)
	}
	return a.prompt(label)
}

// confirmer pregunta s/N por la entrada; assumeYes lo salta.
func (a *App) confirmer(assumeYes bool) func(string) bool {
	return func(question string) bool {
		if assumeYes {
			return true
		}
		answer, err := a.prompt(question + " [y/N]")
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}
}
