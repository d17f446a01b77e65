// cmd/seedadmin/main.go — Crea/actualiza el usuario administrador de demo.
// Uso: go run ./cmd/seedadmin
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/clehider/BazarMundoVictor/internal/infra"
	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	email := "admin@mundovictor.com"
	password := "1234"
	nombre := "Admin Demo"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	rdb, err := infra.NewRedis(redisURL)
	if err != nil {
		log.Fatalf("redis connect error: %v", err)
	}
	store := kvstore.NewRedis(rdb)
	repo := repository.NewUsuarioRepository(store)

	ctx := context.Background()
	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Nombre = nombre
		existing.Rol = "admin"
		existing.PasswordHash = string(hash)
		existing.Activo = true
		if err := repo.Update(ctx, existing); err != nil {
			log.Fatalf("update error: %v", err)
		}
	case errors.Is(err, repository.ErrUsuarioNoEncontrado):
		u := &model.Usuario{
			Email:        email,
			Nombre:       nombre,
			Rol:          "admin",
			PasswordHash: string(hash),
			Activo:       true,
		}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create error: %v", err)
		}
	default:
		log.Fatalf("lookup error: %v", err)
	}

	fmt.Printf("✅ Usuario '%s' creado/actualizado con password '%s'\n", email, password)
}
