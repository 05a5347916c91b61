package questiongenerator

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence collaborator: an opaque store with create/query
// operations keyed by numeric IDs. The generation engine never touches it;
// only the CLI and webserver do.
type Store struct {
	db *sql.DB
}

// DBUser is a stored user account.
type DBUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// DBSubject is a stored subject.
type DBSubject struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UserID      int64  `json:"user_id"`
}

// DBTopic is a stored topic under a subject.
type DBTopic struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SubjectID int64  `json:"subject_id"`
}

// DBQuestion is a stored question record.
type DBQuestion struct {
	ID             int64     `json:"id"`
	SubjectID      int64     `json:"subject_id"`
	TopicID        int64     `json:"topic_id,omitempty"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	TaxonomyLevel  string    `json:"taxonomy_level"`
	Difficulty     string    `json:"difficulty"`
	QuestionType   string    `json:"question_type"`
	ContextSnippet string    `json:"context_snippet,omitempty"`
	Marks          int       `json:"marks,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DBQuestionSet is a stored named collection of questions.
type DBQuestionSet struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	QuestionIDs []int64   `json:"question_ids,omitempty"`
}

// OpenStore opens a sqlite-backed store at the given path.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTables creates the necessary tables if they don't exist.
func (s *Store) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subjects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			user_id INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			subject_id INTEGER NOT NULL,
			FOREIGN KEY (subject_id) REFERENCES subjects(id)
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id INTEGER NOT NULL,
			topic_id INTEGER,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			taxonomy_level TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			question_type TEXT NOT NULL,
			context_snippet TEXT,
			marks INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (subject_id) REFERENCES subjects(id),
			FOREIGN KEY (topic_id) REFERENCES topics(id)
		)`,
		`CREATE TABLE IF NOT EXISTS question_sets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS question_set_items (
			set_id INTEGER NOT NULL,
			question_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (set_id, question_id),
			FOREIGN KEY (set_id) REFERENCES question_sets(id),
			FOREIGN KEY (question_id) REFERENCES questions(id)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateUser creates a user with a bcrypt-hashed password.
func (s *Store) CreateUser(username, email, password string) (*DBUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &DBUser{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	result, err := s.db.Exec(
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}
	return user, nil
}

// Authenticate checks a username/password pair against the stored hash.
func (s *Store) Authenticate(username, password string) (*DBUser, error) {
	var user DBUser
	err := s.db.QueryRow(
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?",
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %s", username)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials for %s", username)
	}
	return &user, nil
}

// CreateSubject creates a subject owned by a user.
func (s *Store) CreateSubject(name, description string, userID int64) (*DBSubject, error) {
	result, err := s.db.Exec(
		"INSERT INTO subjects (name, description, user_id) VALUES (?, ?, ?)",
		name, description, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read subject id: %w", err)
	}
	return &DBSubject{ID: id, Name: name, Description: description, UserID: userID}, nil
}

// GetSubjects returns all subjects owned by a user.
func (s *Store) GetSubjects(userID int64) ([]DBSubject, error) {
	rows, err := s.db.Query(
		"SELECT id, name, description, user_id FROM subjects WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get subjects: %w", err)
	}
	defer rows.Close()

	var subjects []DBSubject
	for rows.Next() {
		var subject DBSubject
		var description sql.NullString
		if err := rows.Scan(&subject.ID, &subject.Name, &description, &subject.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subject.Description = description.String
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subjects: %w", err)
	}
	return subjects, nil
}

// GetSubject retrieves a subject by ID.
func (s *Store) GetSubject(id int64) (*DBSubject, error) {
	var subject DBSubject
	var description sql.NullString
	err := s.db.QueryRow(
		"SELECT id, name, description, user_id FROM subjects WHERE id = ?",
		id,
	).Scan(&subject.ID, &subject.Name, &description, &subject.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("subject not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	subject.Description = description.String
	return &subject, nil
}

// GetTopic retrieves a topic by ID.
func (s *Store) GetTopic(id int64) (*DBTopic, error) {
	var topic DBTopic
	err := s.db.QueryRow(
		"SELECT id, name, subject_id FROM topics WHERE id = ?",
		id,
	).Scan(&topic.ID, &topic.Name, &topic.SubjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("topic not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &topic, nil
}

// CreateTopic creates a topic under a subject.
func (s *Store) CreateTopic(name string, subjectID int64) (*DBTopic, error) {
	result, err := s.db.Exec(
		"INSERT INTO topics (name, subject_id) VALUES (?, ?)",
		name, subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read topic id: %w", err)
	}
	return &DBTopic{ID: id, Name: name, SubjectID: subjectID}, nil
}

// GetTopics returns all topics under a subject.
func (s *Store) GetTopics(subjectID int64) ([]DBTopic, error) {
	rows, err := s.db.Query(
		"SELECT id, name, subject_id FROM topics WHERE subject_id = ? ORDER BY id",
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	defer rows.Close()

	var topics []DBTopic
	for rows.Next() {
		var topic DBTopic
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.SubjectID); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}
	return topics, nil
}

// SaveQuestions persists generated records under a subject (and optional
// topic, 0 meaning none), returning the assigned question IDs in order.
func (s *Store) SaveQuestions(records []QuestionRecord, subjectID, topicID int64) ([]int64, error) {
	ids := make([]int64, 0, len(records))
	for _, record := range records {
		var topic interface{}
		if topicID > 0 {
			topic = topicID
		}
		result, err := s.db.Exec(
			`INSERT INTO questions
				(subject_id, topic_id, question, answer, taxonomy_level, difficulty, question_type, context_snippet, marks, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			subjectID, topic, record.Question, record.Answer, string(record.TaxonomyLevel),
			string(record.Difficulty), record.QuestionType, record.ContextSnippet, record.Marks, time.Now(),
		)
		if err != nil {
			return ids, fmt.Errorf("failed to save question: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return ids, fmt.Errorf("failed to read question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetQuestions returns questions for a subject, optionally filtered by
// taxonomy level and difficulty. Empty filter strings match everything.
func (s *Store) GetQuestions(subjectID int64, taxonomy, difficulty string, limit int) ([]DBQuestion, error) {
	query := `SELECT id, subject_id, topic_id, question, answer, taxonomy_level, difficulty, question_type, context_snippet, marks, created_at
		FROM questions WHERE subject_id = ?`
	args := []interface{}{subjectID}
	if taxonomy != "" {
		query += " AND taxonomy_level = ?"
		args = append(args, taxonomy)
	}
	if difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, difficulty)
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var questions []DBQuestion
	for rows.Next() {
		var q DBQuestion
		var topicID sql.NullInt64
		var snippet sql.NullString
		if err := rows.Scan(&q.ID, &q.SubjectID, &topicID, &q.Question, &q.Answer,
			&q.TaxonomyLevel, &q.Difficulty, &q.QuestionType, &snippet, &q.Marks, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.TopicID = topicID.Int64
		q.ContextSnippet = snippet.String
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	return questions, nil
}

// CreateQuestionSet stores a named set referencing existing questions.
func (s *Store) CreateQuestionSet(userID int64, title, description string, questionIDs []int64) (*DBQuestionSet, error) {
	set := &DBQuestionSet{
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
		QuestionIDs: questionIDs,
	}
	result, err := s.db.Exec(
		"INSERT INTO question_sets (user_id, title, description, created_at) VALUES (?, ?, ?, ?)",
		set.UserID, set.Title, set.Description, set.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create question set: %w", err)
	}
	set.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read question set id: %w", err)
	}

	for position, questionID := range questionIDs {
		if _, err := s.db.Exec(
			"INSERT INTO question_set_items (set_id, question_id, position) VALUES (?, ?, ?)",
			set.ID, questionID, position+1,
		); err != nil {
			return nil, fmt.Errorf("failed to add question %d to set: %w", questionID, err)
		}
	}
	return set, nil
}

// GetQuestionSet retrieves a set and its ordered question IDs.
func (s *Store) GetQuestionSet(id int64) (*DBQuestionSet, error) {
	var set DBQuestionSet
	var description sql.NullString
	err := s.db.QueryRow(
		"SELECT id, user_id, title, description, created_at FROM question_sets WHERE id = ?",
		id,
	).Scan(&set.ID, &set.UserID, &set.Title, &description, &set.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("question set not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get question set: %w", err)
	}
	set.Description = description.String

	rows, err := s.db.Query(
		"SELECT question_id FROM question_set_items WHERE set_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get question set items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var questionID int64
		if err := rows.Scan(&questionID); err != nil {
			return nil, fmt.Errorf("failed to scan question set item: %w", err)
		}
		set.QuestionIDs = append(set.QuestionIDs, questionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question set items: %w", err)
	}
	return &set, nil
}

// GetQuestionSets returns all sets owned by a user, newest first.
func (s *Store) GetQuestionSets(userID int64) ([]DBQuestionSet, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, title, description, created_at FROM question_sets WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get question sets: %w", err)
	}
	defer rows.Close()

	var sets []DBQuestionSet
	for rows.Next() {
		var set DBQuestionSet
		var description sql.NullString
		if err := rows.Scan(&set.ID, &set.UserID, &set.Title, &description, &set.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question set: %w", err)
		}
		set.Description = description.String
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question sets: %w", err)
	}
	return sets, nil
}

// GetQuestionsByIDs loads questions by ID, preserving the given order.
func (s *Store) GetQuestionsByIDs(ids []int64) ([]DBQuestion, error) {
	questions := make([]DBQuestion, 0, len(ids))
	for _, id := range ids {
		var q DBQuestion
		var topicID sql.NullInt64
		var snippet sql.NullString
		err := s.db.QueryRow(
			`SELECT id, subject_id, topic_id, question, answer, taxonomy_level, difficulty, question_type, context_snippet, marks, created_at
				FROM questions WHERE id = ?`,
			id,
		).Scan(&q.ID, &q.SubjectID, &topicID, &q.Question, &q.Answer,
			&q.TaxonomyLevel, &q.Difficulty, &q.QuestionType, &snippet, &q.Marks, &q.CreatedAt)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("question not found: %d", id)
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		q.TopicID = topicID.Int64
		q.ContextSnippet = snippet.String
		questions = append(questions, q)
	}
	return questions, nil
}
