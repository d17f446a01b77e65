package service

import (
	"context"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/config"
	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrCredencialesInvalidas
	}
	if !user.Activo {
		return nil, ErrCredencialesInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	_ = s.repo.TocarLastLogin(ctx, user.ID)

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User:        usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(u *model.Usuario) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"email":   u.Email,
		"rol":     u.Rol,
		"exp":     time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.Usuario{
		Email:        req.Email,
		Nombre:       req.Nombre,
		Rol:          req.Rol,
		PasswordHash: string(hash),
		Activo:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(u)
	return &resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != "" {
		u.Nombre = req.Nombre
	}
	if req.Rol != "" {
		u.Rol = req.Rol
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if req.Activo != nil {
		u.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(u)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	usuarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UsuarioResponse, 0, len(usuarios))
	for i := range usuarios {
		out = append(out, usuarioToResponse(&usuarios[i]))
	}
	return out, nil
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	var lastLogin *string
	if u.LastLogin != nil {
		ll := u.LastLogin.Format(time.RFC3339)
		lastLogin = &ll
	}
	return dto.UsuarioResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Nombre:    u.Nombre,
		Rol:       u.Rol,
		Activo:    u.Activo,
		LastLogin: lastLogin,
	}
}
