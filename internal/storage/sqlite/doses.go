package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage"
)

const doseColumns = "id, patient_id, medication_name, scheduled_date, scheduled_time, status, created_at, updated_at, deleted_at"

const doseOrder = " ORDER BY scheduled_date, scheduled_time = '', scheduled_time, medication_name, created_at"

func scanDose(row rowScanner) (models.Dose, error) {
	var d models.Dose
	var status, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(&d.ID, &d.PatientID, &d.MedicationName, &d.ScheduledDate, &d.ScheduledTime,
		&status, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return models.Dose{}, err
	}

	d.Status = constants.DoseStatus(status)
	if d.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Dose{}, err
	}
	if d.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Dose{}, err
	}
	if d.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.Dose{}, err
	}
	return d, nil
}

func (s *Store) queryDoses(query string, args ...any) ([]models.Dose, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doses []models.Dose
	for rows.Next() {
		d, err := scanDose(rows)
		if err != nil {
			return nil, err
		}
		doses = append(doses, d)
	}
	return doses, rows.Err()
}

func (s *Store) AddDose(dose models.Dose) error {
	now := time.Now()
	if dose.CreatedAt.IsZero() {
		dose.CreatedAt = now
	}
	if dose.UpdatedAt.IsZero() {
		dose.UpdatedAt = dose.CreatedAt
	}
	if dose.Status == "" {
		dose.Status = constants.DoseStatusPending
	}

	_, err := s.db.Exec(`
		INSERT INTO doses (`+doseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		dose.ID, dose.PatientID, dose.MedicationName, dose.ScheduledDate, dose.ScheduledTime,
		string(dose.Status), formatTime(dose.CreatedAt), formatTime(dose.UpdatedAt), nullTime(dose.DeletedAt))
	return err
}

func (s *Store) GetDose(id string) (models.Dose, error) {
	row := s.db.QueryRow(`SELECT `+doseColumns+` FROM doses WHERE id = ? AND deleted_at IS NULL`, id)
	d, err := scanDose(row)
	if err != nil {
		return models.Dose{}, notFound("dose", id, err)
	}
	return d, nil
}

func (s *Store) GetDosesForPatient(patientID, startDay, endDay string) ([]models.Dose, error) {
	query := `SELECT ` + doseColumns + ` FROM doses WHERE patient_id = ? AND deleted_at IS NULL`
	args := []any{patientID}
	if startDay != "" {
		query += " AND scheduled_date >= ?"
		args = append(args, startDay)
	}
	if endDay != "" {
		query += " AND scheduled_date <= ?"
		args = append(args, endDay)
	}
	return s.queryDoses(query+doseOrder, args...)
}

func (s *Store) GetAllDosesForPatient(patientID string) ([]models.Dose, error) {
	return s.GetDosesForPatient(patientID, "", "")
}

func (s *Store) GetDosesForDay(patientID, day string) ([]models.Dose, error) {
	return s.GetDosesForPatient(patientID, day, day)
}

func (s *Store) UpdateDose(dose models.Dose) error {
	result, err := s.db.Exec(`
		UPDATE doses SET
			patient_id = ?, medication_name = ?, scheduled_date = ?, scheduled_time = ?,
			status = ?, updated_at = ?, deleted_at = ?
		WHERE id = ?`,
		dose.PatientID, dose.MedicationName, dose.ScheduledDate, dose.ScheduledTime,
		string(dose.Status), formatTime(time.Now()), nullTime(dose.DeletedAt), dose.ID)
	if err != nil {
		return err
	}
	return expectOne(result, "dose "+dose.ID)
}

func (s *Store) UpdateDoseStatus(id string, status constants.DoseStatus) error {
	result, err := s.db.Exec(`
		UPDATE doses SET status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		string(status), formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return expectOne(result, "dose "+id)
}

func (s *Store) DeleteDose(id string) error {
	result, err := s.db.Exec(`
		UPDATE doses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return expectOne(result, "dose "+id+" (already deleted?)")
}

func (s *Store) RestoreDose(id string) error {
	// A dose of a deleted patient stays deleted until the patient is restored.
	result, err := s.db.Exec(`
		UPDATE doses SET deleted_at = NULL
		WHERE id = ? AND deleted_at IS NOT NULL
		AND patient_id IN (SELECT id FROM patients WHERE deleted_at IS NULL)`, id)
	if err != nil {
		return err
	}
	return expectOne(result, "deleted dose "+id+" of an active patient")
}

func (s *Store) GetAllDoses() ([]models.Dose, error) {
	return s.queryDoses(`SELECT ` + doseColumns + ` FROM doses` + doseOrder)
}

// expectOne reports storage.ErrNotFound when the statement touched no row.
func expectOne(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
