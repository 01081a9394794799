// Command seed_recipes posts recipes from a YAML seed file to a running
// recipe store.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pageza/recipe-store/backend/internal/model"
	"github.com/pageza/recipe-store/backend/internal/observability"
	"github.com/pageza/recipe-store/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed_recipes",
		Usage: "Create recipes in a running recipe store",
		Description: `Reads recipes from a YAML seed file and creates each one through
POST /recipes. Recipes are validated locally before anything is sent.

Example:
  seed_recipes --url http://localhost:8080 --file recipes.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Value:   "http://localhost:8080",
				Usage:   "Base URL of the recipe store",
				Sources: cli.EnvVars("RECIPES_URL"),
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to a YAML seed file",
			},
			&cli.BoolFlag{
				Name:  "defaults",
				Usage: "Also create the built-in default recipes",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 10 * time.Second,
				Usage: "Per-request timeout",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := observability.NewLogger("seed_recipes", observability.ParseLevel(cmd.String("log-level")))

			var inputs []model.RecipeInput
			if cmd.Bool("defaults") {
				inputs = append(inputs, store.DefaultSeed()...)
			}
			if path := cmd.String("file"); path != "" {
				fromFile, err := store.LoadSeed(path)
				if err != nil {
					return err
				}
				inputs = append(inputs, fromFile...)
			}
			if len(inputs) == 0 {
				return errors.New("nothing to seed: pass --file or --defaults")
			}

			s := &seeder{
				client:  &http.Client{Timeout: cmd.Duration("timeout")},
				baseURL: strings.TrimRight(cmd.String("url"), "/"),
				logger:  logger,
			}
			created, err := s.seed(ctx, inputs)
			logger.Info("seeding finished", slog.Int("created", len(created)), slog.Int("requested", len(inputs)))
			return err
		},
	}
}

type seeder struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// seed creates every input in order. A failed recipe is logged and skipped;
// the returned error joins all failures.
func (s *seeder) seed(ctx context.Context, inputs []model.RecipeInput) ([]model.Recipe, error) {
	var (
		created []model.Recipe
		errs    []error
	)
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		recipe, err := s.create(ctx, in)
		if err != nil {
			s.logger.Error("failed to create recipe", slog.Int("index", i), slog.String("name", in.Name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("recipe %d (%s): %w", i, in.Name, err))
			continue
		}
		observability.WithRecipe(s.logger, recipe.ID).Info("created recipe", slog.String("name", recipe.Name))
		created = append(created, recipe)
	}
	return created, errors.Join(errs...)
}

func (s *seeder) create(ctx context.Context, in model.RecipeInput) (model.Recipe, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return model.Recipe{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/recipes", bytes.NewReader(body))
	if err != nil {
		return model.Recipe{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.Recipe{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return model.Recipe{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var recipe model.Recipe
	if err := json.NewDecoder(resp.Body).Decode(&recipe); err != nil {
		return model.Recipe{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return recipe, nil
}
