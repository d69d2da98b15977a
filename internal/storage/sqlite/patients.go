package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/medlog/internal/models"
)

const patientColumns = "id, name, email, created_at, deleted_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (models.Patient, error) {
	var p models.Patient
	var createdAt string
	var deletedAt sql.NullString

	if err := row.Scan(&p.ID, &p.Name, &p.Email, &createdAt, &deletedAt); err != nil {
		return models.Patient{}, err
	}

	var err error
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Patient{}, err
	}
	if p.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.Patient{}, err
	}
	return p, nil
}

func (s *Store) AddPatient(patient models.Patient) error {
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now()
	}
	return s.UpdatePatient(patient)
}

func (s *Store) GetPatient(id string) (models.Patient, error) {
	row := s.db.QueryRow(`SELECT `+patientColumns+` FROM patients WHERE id = ? AND deleted_at IS NULL`, id)
	p, err := scanPatient(row)
	if err != nil {
		return models.Patient{}, notFound("patient", id, err)
	}
	return p, nil
}

func (s *Store) GetPatientByName(name string) (models.Patient, error) {
	row := s.db.QueryRow(`SELECT `+patientColumns+` FROM patients WHERE name = ? AND deleted_at IS NULL`, name)
	p, err := scanPatient(row)
	if err != nil {
		return models.Patient{}, notFound("patient", name, err)
	}
	return p, nil
}

func (s *Store) GetAllPatients(includeDeleted bool) ([]models.Patient, error) {
	query := "SELECT " + patientColumns + " FROM patients"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY name, created_at"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (s *Store) UpdatePatient(patient models.Patient) error {
	_, err := s.db.Exec(`
		INSERT INTO patients (id, name, email, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			deleted_at = excluded.deleted_at`,
		patient.ID, patient.Name, patient.Email, formatTime(patient.CreatedAt), nullTime(patient.DeletedAt))
	return err
}

func (s *Store) DeletePatient(id string) error {
	now := formatTime(time.Now())

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE patients SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	if err := expectOne(result, "patient "+id+" (already deleted?)"); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE doses SET deleted_at = ? WHERE patient_id = ? AND deleted_at IS NULL`, now, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) RestorePatient(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var deletedAt sql.NullString
	err = tx.QueryRow(`SELECT deleted_at FROM patients WHERE id = ?`, id).Scan(&deletedAt)
	if err != nil {
		return notFound("patient", id, err)
	}
	if !deletedAt.Valid {
		return fmt.Errorf("patient %s is not deleted", id)
	}

	if _, err := tx.Exec(`UPDATE patients SET deleted_at = NULL WHERE id = ?`, id); err != nil {
		return err
	}
	// Only doses removed together with the patient come back.
	if _, err := tx.Exec(`UPDATE doses SET deleted_at = NULL WHERE patient_id = ? AND deleted_at = ?`, id, deletedAt.String); err != nil {
		return err
	}

	return tx.Commit()
}
