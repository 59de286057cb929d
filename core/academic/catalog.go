package academic

import (
	"context"

	"github.com/pkg/errors"
)

// CatalogEntry is a faculty with its majors, in display order.
type CatalogEntry struct {
	Faculty string
	Majors  []string
}

// Catalog is the institution's faculty/major table, as seeded by the SQL migrations.
// Faculties without majors are listed with none.
var Catalog = []CatalogEntry{
	{Faculty: "Ciencias de la Computación y Diseño Digital", Majors: []string{"Software", "Telemática", "Diseño Gráfico"}},
	{Faculty: "Ciencias de la Ingeniería", Majors: []string{"Ingeniería Industrial", "Ingeniería Mecánica", "Ingeniería Eléctrica"}},
	{Faculty: "Ciencias Agropecuarias", Majors: []string{"Agronomía", "Zootecnia"}},
	{Faculty: "Ciencias Empresariales", Majors: []string{"Administración de Empresas", "Contabilidad y Auditoría"}},
	{Faculty: "Ciencias Sociales, Económicas y Financieras"},
}

// SeedCatalog creates the Catalog faculties and majors that do not exist yet.
func (svc *Service) SeedCatalog(ctx context.Context) error {
	for _, entry := range Catalog {
		if err := svc.repo.CreateFaculty(ctx, Faculty{Name: entry.Faculty}); err != nil && errors.Cause(err) != ErrFacultyExists {
			return errors.Wrapf(err, "seeding faculty %q", entry.Faculty)
		}
		for _, name := range entry.Majors {
			err := svc.repo.CreateMajor(ctx, Major{Name: name, Faculty: entry.Faculty})
			if err != nil && errors.Cause(err) != ErrMajorExists {
				return errors.Wrapf(err, "seeding major %q", name)
			}
		}
	}
	return nil
}
