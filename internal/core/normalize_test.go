package core

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Combustível  ", "combustivel"},
		{"FRETES ENCOMENDAS", "fretes encomendas"},
		{"Manutenção Veículos", "manutencao veiculos"},
		{"Quanto gastei com combustível este ano?", "quanto gastei com combustivel este ano?"},
		{"despesa 💸 geral", "despesa  geral"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "Combustível", "ÁGUA E ESGOTO", "já normalizado", "plain ascii"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
