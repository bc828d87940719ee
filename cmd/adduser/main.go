package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"secure-banking-api/app"
	"secure-banking-api/config"
	"secure-banking-api/model"
	"secure-banking-api/repository"
	"secure-banking-api/service"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"
)

// registrar creates users with an explicit role.
type registrar interface {
	RegisterWithRole(ctx context.Context, username, password string, role model.Role) (*model.User, error)
}

// openRegistrar connects to the configured database. Tests replace it.
var openRegistrar = func(configDir string) (registrar, func(), error) {
	database, err := app.Bootstrap(configDir)
	if err != nil {
		return nil, nil, err
	}
	hasher := service.NewPasswordHasher(config.AppConfig.Security.BcryptCost)
	users := service.NewUserService(
		database,
		repository.NewUserRepository(database),
		repository.NewAccountRepository(database),
		hasher,
	)
	return users, func() { database.Close() }, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	roleFlag := fs.String("role", string(model.RoleUser), "Role: USER or ADMIN")
	configDir := fs.String("config", ".", "Directory containing config.yml")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-password <password>] [-role USER|ADMIN] [-config <dir>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}

	role := model.Role(strings.ToUpper(*roleFlag))
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", *roleFlag)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	// Same limits as the register endpoint.
	req := model.RegisterRequest{Username: strings.TrimSpace(*username), Password: password}
	if err := validator.New().Struct(req); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	users, closeFn, err := openRegistrar(*configDir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := users.RegisterWithRole(ctx, req.Username, req.Password, role)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			return fmt.Errorf("user %s already exists", req.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d and role %s\n", user.Username, user.ID, user.Role)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
