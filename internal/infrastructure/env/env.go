package env

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

type EnvService struct {
	appEnv string
}

// NewEnvService loads .env (secrets) and then .env.$APP_ENV on top of it.
// Both files are optional.
func NewEnvService() *EnvService {
	return newEnvService(".")
}

func newEnvService(dir string) *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	if err := godotenv.Load(dir + "/.env"); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	envFile := fmt.Sprintf("%s/.env.%s", dir, appEnv)
	if err := godotenv.Overload(envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load %s: %v", envFile, err)
	}

	return &EnvService{appEnv: appEnv}
}

func (e *EnvService) AppEnv() string {
	return e.appEnv
}

func (e *EnvService) Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (e *EnvService) MustGet(key string) string {
	val := e.Get(key)
	if val == "" {
		log.Fatalf("ENV %s is missing", key)
	}
	return val
}

// Require is MustGet for callers that handle the error themselves.
func (e *EnvService) Require(key string) (string, error) {
	val := e.Get(key)
	if val == "" {
		return "", fmt.Errorf("%w: %s", entity.ErrMissingVariable, key)
	}
	return val, nil
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetFloat(key string, defaultValue float64) float64 {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
