package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUsuarioNoEncontrado = errors.New("usuario no encontrado")
	ErrEmailDuplicado      = errors.New("ya existe un usuario con ese email")
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	List(ctx context.Context) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	TocarLastLogin(ctx context.Context, id uuid.UUID) error
}

type usuarioRepo struct{ store kvstore.Store }

func NewUsuarioRepository(store kvstore.Store) UsuarioRepository {
	return &usuarioRepo{store: store}
}

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now().UTC()
	if existing, err := r.FindByEmail(ctx, u.Email); err == nil && existing != nil {
		return ErrEmailDuplicado
	}
	_, err := r.store.CompareAndSwap(ctx, keyUsuario(u.ID), marshal(u), 0)
	return err
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	data, _, err := r.store.Get(ctx, keyUsuario(id))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrUsuarioNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	var u model.Usuario
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	usuarios, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range usuarios {
		if usuarios[i].Email == email {
			return &usuarios[i], nil
		}
	}
	return nil, ErrUsuarioNoEncontrado
}

func (r *usuarioRepo) List(ctx context.Context) ([]model.Usuario, error) {
	kvs, err := r.store.List(ctx, prefixUsuarios)
	if err != nil {
		return nil, err
	}
	usuarios := make([]model.Usuario, 0, len(kvs))
	for _, kv := range kvs {
		var u model.Usuario
		if err := json.Unmarshal(kv.Value, &u); err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, nil
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return r.store.Put(ctx, keyUsuario(u.ID), marshal(u))
}

func (r *usuarioRepo) TocarLastLogin(ctx context.Context, id uuid.UUID) error {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	return r.Update(ctx, u)
}
