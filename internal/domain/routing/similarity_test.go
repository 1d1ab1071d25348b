package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/routing"
)

// Caso del detector: mismo teléfono, email distinto, nombre parcialmente igual.
// "Rajesh Kumar" vs "Rajesh K": teléfono 60 + nombre parcial.
func TestScore_TelefonoIgualNombreParcial(t *testing.T) {
	a := &entity.Lead{Name: "Rajesh Kumar", Phone: "+91 9876543210", Email: "rajesh.kumar@email.com"}
	b := &entity.Lead{Name: "Rajesh K", Phone: "+91 9876543210", Email: "r.kumar@gmail.com"}

	got := routing.Score(a, b)
	// 60 (teléfono) + 15 * 1/3 (un token compartido de tres en la unión) = 65
	assert.Equal(t, 65, got)
}

// Identidad completa: teléfono + email + nombre = 100.
func TestScore_LeadIdentico_Cien(t *testing.T) {
	a := &entity.Lead{Name: "Sneha Iyer", Phone: "+91 8765432110", Email: "sneha@example.com"}
	b := &entity.Lead{Name: "Sneha Iyer", Phone: "08765432110", Email: "SNEHA@example.com"}

	assert.Equal(t, 100, routing.Score(a, b))
}

// Simetría: Score(a,b) == Score(b,a) para pares arbitrarios.
func TestScore_Simetrico(t *testing.T) {
	pares := [][2]*entity.Lead{
		{
			{Name: "Arjun Reddy", Phone: "+91 9876543211", Email: "arjun@mail.com"},
			{Name: "Arjun R", Phone: "9876543211", Email: "arjun.r@mail.com"},
		},
		{
			{Name: "Karthik Singh", Phone: "7654321011", Email: "k@x.com"},
			{Name: "Karthik", Phone: "000", Email: "k@x.com"},
		},
		{
			{Name: "José García", Phone: "", Email: ""},
			{Name: "jose garcia lopez", Phone: "", Email: ""},
		},
		{
			// Token repetido en un solo lado: debe contar una vez.
			{Name: "Jose Jose", Phone: "", Email: ""},
			{Name: "Jose", Phone: "", Email: ""},
		},
		{
			{Name: "Ram Ram Mohan", Phone: "", Email: ""},
			{Name: "Mohan Ram", Phone: "", Email: ""},
		},
	}
	for _, p := range pares {
		assert.Equal(t, routing.Score(p[0], p[1]), routing.Score(p[1], p[0]),
			"el score debe ser simétrico para %q / %q", p[0].Name, p[1].Name)
	}
}

// Un nombre con tokens repetidos no diluye el solape ni rompe la simetría.
func TestScore_TokensRepetidosNoDiluyen(t *testing.T) {
	a := &entity.Lead{Name: "Jose Jose"}
	b := &entity.Lead{Name: "Jose"}

	assert.Equal(t, 15, routing.Score(a, b))
	assert.Equal(t, routing.Score(a, b), routing.Score(b, a))
}

// Sin coincidencias el score es cero; campos vacíos nunca suman.
func TestScore_SinCoincidencias_Cero(t *testing.T) {
	a := &entity.Lead{Name: "Ana", Phone: "111", Email: "a@a.com"}
	b := &entity.Lead{Name: "Luis", Phone: "222", Email: "b@b.com"}
	assert.Equal(t, 0, routing.Score(a, b))

	vacio := &entity.Lead{}
	assert.Equal(t, 0, routing.Score(vacio, vacio))
}

// Los diacríticos y mayúsculas no afectan los tokens del nombre.
func TestNameTokens_NormalizaDiacriticos(t *testing.T) {
	assert.Equal(t, []string{"jose", "garcia"}, routing.NameTokens("José GARCÍA"))
}

// El teléfono compara por dígitos, ignorando formato y prefijo de país.
func TestScore_PrefijoDePaisNoImporta(t *testing.T) {
	a := &entity.Lead{Name: "x", Phone: "+91 98765-43210"}
	b := &entity.Lead{Name: "y", Phone: "9876543210"}
	assert.Equal(t, 60, routing.Score(a, b))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "919876543210", routing.NormalizePhone("+91 9876-543 210"))
	assert.Equal(t, "", routing.NormalizePhone("sin dígitos"))
}
