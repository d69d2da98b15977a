package postgres

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
	var deletedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.CreatedAt, &deletedAt); err != nil {
		return models.Patient{}, err
	}
	p.DeletedAt = timePtr(deletedAt)
	return p, nil
}

func (s *Store) AddPatient(patient models.Patient) error {
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now()
	}
	return s.UpdatePatient(patient)
}

func (s *Store) GetPatient(id string) (models.Patient, error) {
	row := s.db.QueryRow(`SELECT `+patientColumns+` FROM patients WHERE id = $1 AND deleted_at IS NULL`, id)
	p, err := scanPatient(row)
	if err != nil {
		return models.Patient{}, notFound("patient", id, err)
	}
	return p, nil
}

func (s *Store) GetPatientByName(name string) (models.Patient, error) {
	row := s.db.QueryRow(`SELECT `+patientColumns+` FROM patients WHERE name = $1 AND deleted_at IS NULL`, name)
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
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			deleted_at = EXCLUDED.deleted_at`,
		patient.ID, patient.Name, patient.Email, patient.CreatedAt, nullTime(patient.DeletedAt))
	return err
}

func (s *Store) DeletePatient(id string) error {
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE patients SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	if err := expectOne(result, "patient "+id+" (already deleted?)"); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE doses SET deleted_at = $1 WHERE patient_id = $2 AND deleted_at IS NULL`, now, id); err != nil {
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

	var deletedAt sql.NullTime
	if err := tx.QueryRow(`SELECT deleted_at FROM patients WHERE id = $1 FOR UPDATE`, id).Scan(&deletedAt); err != nil {
		return notFound("patient", id, err)
	}
	if !deletedAt.Valid {
		return fmt.Errorf("patient %s is not deleted", id)
	}

	if _, err := tx.Exec(`UPDATE patients SET deleted_at = NULL WHERE id = $1`, id); err != nil {
		return err
	}
	// Only doses removed together with the patient come back.
	if _, err := tx.Exec(`UPDATE doses SET deleted_at = NULL WHERE patient_id = $1 AND deleted_at = $2`, id, deletedAt.Time); err != nil {
		return err
	}

	return tx.Commit()
}
