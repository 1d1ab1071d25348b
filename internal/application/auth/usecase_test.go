package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelead/drivelead-api/internal/application/apptest"
	"github.com/drivelead/drivelead-api/internal/application/auth"
	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/pkg/jwt"
)

func newAuthUC(store *apptest.Store) *auth.AuthUseCase {
	return auth.NewAuthUseCase(store.UserRepo(), store.OwnerRepo(), auth.JWTConfig{
		Secret: "secreto-de-test", ExpMinutes: 60, Issuer: "drivelead-test",
	})
}

// Registro y login completos: el token emitido carga el rol del usuario.
func TestRegisterYLogin_FlujoCompleto(t *testing.T) {
	store := apptest.NewStore()
	uc := newAuthUC(store)

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "gerente@drivelead.test", Password: "supersecreta", Name: "Gerente", Role: domain.RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, user.Role)
	assert.Equal(t, "active", user.Status)

	login, err := uc.Login(dto.LoginRequest{Email: "gerente@drivelead.test", Password: "supersecreta"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	userID, role, err := jwt.Parse("secreto-de-test", login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, domain.RoleManager, role)
}

// Sin rol explícito, la cuenta queda como vendedor.
func TestRegister_RolPorDefectoEsVendedor(t *testing.T) {
	store := apptest.NewStore()
	uc := newAuthUC(store)

	user, err := uc.RegisterUser(dto.RegisterRequest{Email: "v@drivelead.test", Password: "supersecreta"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSales, user.Role)
}

// El email es único.
func TestRegister_EmailDuplicado(t *testing.T) {
	store := apptest.NewStore()
	uc := newAuthUC(store)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "v@drivelead.test", Password: "supersecreta"})
	require.NoError(t, err)
	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "v@drivelead.test", Password: "otraclave123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

// Vincular la cuenta a un asesor inexistente falla.
func TestRegister_AsesorInexistente(t *testing.T) {
	store := apptest.NewStore()
	uc := newAuthUC(store)

	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "v@drivelead.test", Password: "supersecreta", OwnerID: "owner-fantasma",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Credenciales incorrectas y cuentas suspendidas.
func TestLogin_Rechazos(t *testing.T) {
	store := apptest.NewStore()
	uc := newAuthUC(store)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "v@drivelead.test", Password: "supersecreta"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "v@drivelead.test", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@drivelead.test", Password: "supersecreta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	for _, u := range store.Users {
		u.Status = "suspended"
	}
	_, err = uc.Login(dto.LoginRequest{Email: "v@drivelead.test", Password: "supersecreta"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Un rol desconocido en el registro se rechaza.
func TestRegister_RolInvalido(t *testing.T) {
	store := apptest.NewStore()
	uc := newAuthUC(store)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "x@drivelead.test", Password: "supersecreta", Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
