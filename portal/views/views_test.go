package views

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/core/supervisor"
	"github.com/trezcool/ayudantias/tests"
)

func TestFilterAssistants(t *testing.T) {
	list := []assistant.Assistant{
		{Cedula: "1204567890", Name: "Ana Vera"},
		{Cedula: "0912345678", Name: "Luis Mora"},
		{Cedula: "1309876543", Name: "María Álvarez"},
	}

	tests := []struct {
		term string
		want []string
	}{
		{term: "", want: []string{"1204567890", "0912345678", "1309876543"}},
		{term: "   ", want: []string{"1204567890", "0912345678", "1309876543"}},
		{term: "ana", want: []string{"1204567890"}},
		{term: "MORA", want: []string{"0912345678"}},
		{term: "0987", want: []string{"1309876543"}},
		{term: "45", want: []string{"1204567890", "0912345678"}},
		{term: "álvarez", want: []string{"1309876543"}},
		{term: "zzz", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := make([]string, 0)
			for _, a := range FilterAssistants(list, tt.term) {
				got = append(got, a.Cedula)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterSupervisors(t *testing.T) {
	list := []supervisor.Supervisor{{Cedula: "0912345678", Name: "Luis Mora"}, {Cedula: "1711111111", Name: "Rosa Paz"}}
	assert.Equal(t, list, FilterSupervisors(list, ""))
	assert.Equal(t, list[1:], FilterSupervisors(list, "paz"))
	assert.Equal(t, list[:1], FilterSupervisors(list, "0912"))
}

type fetcherFunc func(ctx context.Context, faculty string) ([]academic.Major, error)

func (f fetcherFunc) Majors(ctx context.Context, faculty string) ([]academic.Major, error) {
	return f(ctx, faculty)
}

func TestMajorCascade(t *testing.T) {
	logger, logs := testutil.NewLogger(core.NewTestConfig())
	ctx := context.Background()
	offline := false
	fetcher := fetcherFunc(func(_ context.Context, faculty string) ([]academic.Major, error) {
		if offline {
			return nil, errors.New("connection refused")
		}
		if faculty == "Ciencias Empresariales" {
			return []academic.Major{{Name: "Economía", Faculty: faculty}}, nil
		}
		return []academic.Major{}, nil
	})
	c := NewMajorCascade(fetcher, logger)

	assert.Equal(t, []string{"Economía"}, c.Select(ctx, "Ciencias Empresariales"))
	assert.False(t, c.Fallback)

	assert.Empty(t, c.Select(ctx, "Ciencias Sociales, Económicas y Financieras"))
	assert.False(t, c.Fallback)

	assert.Empty(t, c.Select(ctx, ""))

	offline = true
	assert.Equal(t, []string{"Administración de Empresas", "Contabilidad y Auditoría"}, c.Select(ctx, "Ciencias Empresariales"))
	assert.True(t, c.Fallback)
	assert.Contains(t, logs.String(), "connection refused")

	assert.Nil(t, c.Select(ctx, "Medicina"))
	assert.Len(t, FallbackFaculties(), len(academic.Catalog))
}

func TestPartition(t *testing.T) {
	placements := []placement.Placement{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	approvals := []placement.Approval{
		{PlacementID: 2, Period: "2024-1S"},
		{PlacementID: 4, Period: "2024-1S"},
		{PlacementID: 3, Period: "2023-2S"},
		{PlacementID: 99, Period: "2024-1S"},
	}

	approved, pending := Partition(placements, approvals, "2024-1S")
	assert.Equal(t, []placement.Placement{{ID: 2}, {ID: 4}}, approved)
	assert.Equal(t, []placement.Placement{{ID: 1}, {ID: 3}}, pending)
	assert.Equal(t, len(placements), len(approved)+len(pending))

	approved, pending = Partition(placements, nil, "2024-1S")
	assert.Empty(t, approved)
	assert.Equal(t, placements, pending)
}

func TestResolveEvidence(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Evidence
		wantErr error
	}{
		{name: "empty", in: " ", want: Evidence{Kind: EvidenceNone}},
		{name: "https link", in: "https://drive.example.com/acta", want: Evidence{Kind: EvidenceOpen, URL: "https://drive.example.com/acta"}},
		{name: "upload", in: "/uploads/3f1c.pdf", want: Evidence{Kind: EvidenceOpen, URL: "/uploads/3f1c.pdf"}},
		{
			name: "base64 data",
			in:   "data:application/pdf;base64,JVBERi0xLjQ=",
			want: Evidence{Kind: EvidenceDownload, Data: []byte("%PDF-1.4"), MediaType: "application/pdf", Filename: "evidencia.pdf"},
		},
		{
			name: "plain data",
			in:   "data:,Hola%20mundo",
			want: Evidence{Kind: EvidenceDownload, Data: []byte("Hola mundo"), MediaType: defaultDataMediaType, Filename: "evidencia.txt"},
		},
		{name: "bad data", in: "data:image/png;base64", wantErr: ErrBadDataURL},
		{name: "text", in: "Lista de asistencia entregada en secretaría", want: Evidence{Kind: EvidenceCopy, Text: "Lista de asistencia entregada en secretaría"}},
		{name: "ftp is text", in: "ftp://files/acta", want: Evidence{Kind: EvidenceCopy, Text: "ftp://files/acta"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveEvidence(tt.in)
			if tt.wantErr != nil {
				assert.True(t, err != nil && strings.Contains(err.Error(), tt.wantErr.Error()), "%v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
