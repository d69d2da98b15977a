package postgres

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

const doseColumns = "id, patient_id, medication_name, scheduled_date, scheduled_time, status, created_at, updated_at, deleted_at"

const doseOrder = " ORDER BY scheduled_date, scheduled_time = '', scheduled_time, medication_name, created_at"

func scanDose(row rowScanner) (models.Dose, error) {
	var d models.Dose
	var status string
	var scheduled time.Time
	var deletedAt sql.NullTime

	err := row.Scan(&d.ID, &d.PatientID, &d.MedicationName, &scheduled, &d.ScheduledTime,
		&status, &d.CreatedAt, &d.UpdatedAt, &deletedAt)
	if err != nil {
		return models.Dose{}, err
	}

	d.ScheduledDate = scheduled.Format(constants.DateFormat)
	d.Status = constants.DoseStatus(status)
	d.DeletedAt = timePtr(deletedAt)
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
	if dose.CreatedAt.IsZero() {
		dose.CreatedAt = time.Now()
	}
	if dose.UpdatedAt.IsZero() {
		dose.UpdatedAt = dose.CreatedAt
	}
	if dose.Status == "" {
		dose.Status = constants.DoseStatusPending
	}

	_, err := s.db.Exec(`
		INSERT INTO doses (`+doseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		dose.ID, dose.PatientID, dose.MedicationName, dose.ScheduledDate, dose.ScheduledTime,
		string(dose.Status), dose.CreatedAt, dose.UpdatedAt, nullTime(dose.DeletedAt))
	return err
}

func (s *Store) GetDose(id string) (models.Dose, error) {
	row := s.db.QueryRow(`SELECT `+doseColumns+` FROM doses WHERE id = $1 AND deleted_at IS NULL`, id)
	d, err := scanDose(row)
	if err != nil {
		return models.Dose{}, notFound("dose", id, err)
	}
	return d, nil
}

func (s *Store) GetDosesForPatient(patientID, startDay, endDay string) ([]models.Dose, error) {
	query := `SELECT ` + doseColumns + ` FROM doses WHERE patient_id = $1 AND deleted_at IS NULL`
	args := []any{patientID}
	if startDay != "" {
		args = append(args, startDay)
		query += " AND scheduled_date >= $" + strconv.Itoa(len(args))
	}
	if endDay != "" {
		args = append(args, endDay)
		query += " AND scheduled_date <= $" + strconv.Itoa(len(args))
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
			patient_id = $1, medication_name = $2, scheduled_date = $3, scheduled_time = $4,
			status = $5, updated_at = $6, deleted_at = $7
		WHERE id = $8`,
		dose.PatientID, dose.MedicationName, dose.ScheduledDate, dose.ScheduledTime,
		string(dose.Status), time.Now(), nullTime(dose.DeletedAt), dose.ID)
	if err != nil {
		return err
	}
	return expectOne(result, "dose "+dose.ID)
}

func (s *Store) UpdateDoseStatus(id string, status constants.DoseStatus) error {
	result, err := s.db.Exec(`
		UPDATE doses SET status = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`,
		string(status), time.Now(), id)
	if err != nil {
		return err
	}
	return expectOne(result, "dose "+id)
}

func (s *Store) DeleteDose(id string) error {
	result, err := s.db.Exec(`
		UPDATE doses SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return err
	}
	return expectOne(result, "dose "+id+" (already deleted?)")
}

func (s *Store) RestoreDose(id string) error {
	// A dose of a deleted patient stays deleted until the patient is restored.
	result, err := s.db.Exec(`
		UPDATE doses SET deleted_at = NULL
		WHERE id = $1 AND deleted_at IS NOT NULL
		AND patient_id IN (SELECT id FROM patients WHERE deleted_at IS NULL)`, id)
	if err != nil {
		return err
	}
	return expectOne(result, "deleted dose "+id+" of an active patient")
}

func (s *Store) GetAllDoses() ([]models.Dose, error) {
	return s.queryDoses(`SELECT ` + doseColumns + ` FROM doses` + doseOrder)
}
