package mysql

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewSQL = "INSERT INTO reviews\n" +
	"  (subject_kind, subject_id, author, rating, title, `text`, recommend,\n" +
	"   stay_duration, service_type, project_details, aspects, photos, allow_contact, contact_preference)\n" +
	"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

const reviewColumns = "id, subject_kind, subject_id, author, rating, title, `text`, recommend,\n" +
	"  stay_duration, service_type, project_details, aspects, photos, allow_contact, contact_preference, created_at"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Keyset pagination on id: ids grow with created_at, so "id < cursor" walks
// newest-first and "id > cursor" walks oldest-first.
const listSubjectNewestSQL = "SELECT " + reviewColumns + "\nFROM reviews\n" +
	"WHERE subject_kind = ? AND subject_id = ? AND (? = 0 OR id < ?)\n" +
	"ORDER BY id DESC\nLIMIT ?"

const listSubjectOldestSQL = "SELECT " + reviewColumns + "\nFROM reviews\n" +
	"WHERE subject_kind = ? AND subject_id = ? AND id > ?\n" +
	"ORDER BY id ASC\nLIMIT ?"

const listFeedNewestSQL = "SELECT " + reviewColumns + "\nFROM reviews\n" +
	"WHERE (? = 0 OR id < ?)\n" +
	"ORDER BY id DESC\nLIMIT ?"

const listFeedOldestSQL = "SELECT " + reviewColumns + "\nFROM reviews\n" +
	"WHERE id > ?\n" +
	"ORDER BY id ASC\nLIMIT ?"
