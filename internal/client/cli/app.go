package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/passvault/internal/client/api"
	"github.com/dmitrijs2005/passvault/internal/client/config"
)

// App is the interactive vault CLI. It keeps the session token issued at
// login and uses it for all vault operations.
type App struct {
	config *config.Config
	api    *api.Client
	reader *bufio.Reader
	token  string
	user   *api.User
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerEndpointAddr),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.user != nil {
		return a.user.Email
	}
	return "not logged in"
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}
