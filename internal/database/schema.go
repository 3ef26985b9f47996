package database

// Table names used by the web application.
const (
	TableCohorts = "abitur_jahrgaenge"
	TablePersons = "schueler_daten"
	TableAdmins  = "admins"
)

// Consent columns that older installs of schueler_daten lack.
const (
	ColumnConsent     = "datenschutz_einwilligung"
	ColumnConsentDate = "datenschutz_datum"
	columnCreatedAt   = "erstellt_am"
)

// createStatements create all tables. Safe to run multiple times.
var createStatements = []struct {
	table string
	ddl   string
}{
	{TableCohorts, `
CREATE TABLE IF NOT EXISTS abitur_jahrgaenge (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    jahrgang INTEGER UNIQUE NOT NULL,
    aktiv BOOLEAN DEFAULT 1
)`},
	{TablePersons, `
CREATE TABLE IF NOT EXISTS schueler_daten (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    jahrgang_id INTEGER NOT NULL,
    vorname TEXT NOT NULL,
    nachname TEXT NOT NULL,
    email TEXT NOT NULL,
    datenschutz_einwilligung BOOLEAN NOT NULL DEFAULT 1,
    datenschutz_datum TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    erstellt_am TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (jahrgang_id) REFERENCES abitur_jahrgaenge (id)
)`},
	{TableAdmins, `
CREATE TABLE IF NOT EXISTS admins (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    benutzername TEXT UNIQUE NOT NULL,
    passwort_hash TEXT NOT NULL
)`},
}

// consentMigrations add the consent columns to an existing schueler_daten.
// SQLite rejects ADD COLUMN with a non-constant default, so the consent
// date is added without one and backfilled separately.
var consentMigrations = []struct {
	column string
	ddl    string
}{
	{ColumnConsent, `ALTER TABLE schueler_daten ADD COLUMN datenschutz_einwilligung BOOLEAN NOT NULL DEFAULT 1`},
	{ColumnConsentDate, `ALTER TABLE schueler_daten ADD COLUMN datenschutz_datum TIMESTAMP`},
}

// consentDateTrigger stamps rows inserted without a consent date. It is
// only installed when the column was added by migration and therefore
// lacks the CURRENT_TIMESTAMP default of a freshly created table.
const consentDateTrigger = `
CREATE TRIGGER IF NOT EXISTS schueler_daten_datenschutz_datum
AFTER INSERT ON schueler_daten
FOR EACH ROW WHEN NEW.datenschutz_datum IS NULL
BEGIN
    UPDATE schueler_daten SET datenschutz_datum = CURRENT_TIMESTAMP WHERE id = NEW.id;
END`

const (
	backfillConsentDate = `UPDATE schueler_daten SET datenschutz_datum = erstellt_am WHERE datenschutz_datum IS NULL`
	insertCohort        = `INSERT OR IGNORE INTO abitur_jahrgaenge (jahrgang) VALUES (?)`
	insertAdmin         = `INSERT OR IGNORE INTO admins (benutzername, passwort_hash) VALUES (?, ?)`
)
