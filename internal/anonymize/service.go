// Package anonymize replaces the column names of SQL statements with random
// tokens and restores them from the persisted token mapping.
package anonymize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"colhash/internal/domain"
	"colhash/internal/sqlast"
)

// SQLCodec turns SQL text into trees and back.
type SQLCodec interface {
	Parse(sql string, d sqlast.Dialect) (*sqlast.Parsed, error)
	Print(tree sqlast.Tree, d sqlast.Dialect) (string, error)
}

// Request is the input of Hash and Unhash.
type Request struct {
	SQL      string `json:"sql"`
	Database string `json:"database"`
}

// Result is the output of Hash and Unhash.
type Result struct {
	Query       string      `json:"query"`
	ModifiedAST sqlast.Tree `json:"modifiedAst"`
	ColumnList  []string    `json:"columnList"`
}

// Service runs the hash and unhash pipelines over a mapping store.
// It keeps no per-call state and is safe for concurrent use.
type Service struct {
	codec          SQLCodec
	repo           domain.HashRecordRepository
	tokens         *Generator
	defaultDialect sqlast.Dialect
	logger         *slog.Logger
}

// NewService creates a Service. Operations that take no dialect use MySQL
// until SetDefaultDialect is called.
func NewService(codec SQLCodec, repo domain.HashRecordRepository, tokens *Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	d, _ := sqlast.LookupDialect("mysql")
	return &Service{
		codec:          codec,
		repo:           repo,
		tokens:         tokens,
		defaultDialect: d,
		logger:         logger,
	}
}

// SetDefaultDialect sets the dialect used by ModifiedAST, RebuildQuery and
// ParseTree.
func (s *Service) SetDefaultDialect(d sqlast.Dialect) {
	s.defaultDialect = d
}

// DefaultDialect returns the dialect used when a call names none.
func (s *Service) DefaultDialect() sqlast.Dialect {
	return s.defaultDialect
}

// Hash replaces every distinct column name in req.SQL with a fresh token,
// persists the new mappings and returns the rewritten statement. A statement
// without column names is returned unchanged with an empty column list.
func (s *Service) Hash(ctx context.Context, req Request) (*Result, error) {
	d, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	parsed, err := s.codec.Parse(req.SQL, d)
	if err != nil {
		return nil, err
	}

	records, err := s.issueTokens(ctx, ColumnNames(parsed.Tree))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return unchanged(req.SQL, parsed.Tree), nil
	}

	tree := Rewrite(parsed.Tree, NewMapping(records), ToToken)
	query, err := s.codec.Print(tree, d)
	if err != nil {
		return nil, fmt.Errorf("print hashed statement: %w", err)
	}

	s.logger.Info("hashed statement", "dialect", d.Name, "columns", len(records))
	return &Result{
		Query:       query,
		ModifiedAST: tree,
		ColumnList:  columnNames(records),
	}, nil
}

// Unhash resolves the tokens in req.SQL back to their column names. Tokens
// without a mapping become NotFound. If nothing resolves, the input is
// returned unchanged with an empty column list.
func (s *Service) Unhash(ctx context.Context, req Request) (*Result, error) {
	d, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	parsed, err := s.codec.Parse(req.SQL, d)
	if err != nil {
		return nil, err
	}

	records, err := s.lookup(ctx, ColumnNames(parsed.Tree))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return unchanged(req.SQL, parsed.Tree), nil
	}

	tree := Rewrite(parsed.Tree, NewMapping(records), ToName)
	query, err := s.codec.Print(tree, d)
	if err != nil {
		return nil, fmt.Errorf("print restored statement: %w", err)
	}

	s.logger.Info("unhashed statement", "dialect", d.Name, "columns", len(records))
	return &Result{
		Query:       query,
		ModifiedAST: tree,
		ColumnList:  columnNames(records),
	}, nil
}

// ModifiedAST hashes sql in the default dialect and returns only the
// rewritten tree. The new mappings are persisted as in Hash.
func (s *Service) ModifiedAST(ctx context.Context, sql string) (sqlast.Tree, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, domain.ErrValidation("sql query is required")
	}

	parsed, err := s.codec.Parse(sql, s.defaultDialect)
	if err != nil {
		return nil, err
	}

	records, err := s.issueTokens(ctx, ColumnNames(parsed.Tree))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return parsed.Tree, nil
	}
	return Rewrite(parsed.Tree, NewMapping(records), ToToken), nil
}

// RebuildQuery prints tree in the default dialect and resolves any tokens it
// contains back to column names. If none resolve, the printed tree is
// returned as is.
func (s *Service) RebuildQuery(ctx context.Context, tree sqlast.Tree) (string, error) {
	if len(tree) == 0 {
		return "", domain.ErrValidation("AST is required")
	}
	d := s.defaultDialect

	query, err := s.codec.Print(tree, d)
	if err != nil {
		return "", err
	}

	// Names come from the printed text so the tree is read exactly as a
	// caller of Unhash would see it.
	parsed, err := s.codec.Parse(query, d)
	if err != nil {
		return "", err
	}

	records, err := s.lookup(ctx, ColumnNames(parsed.Tree))
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return query, nil
	}

	restored, err := s.codec.Print(Rewrite(tree, NewMapping(records), ToName), d)
	if err != nil {
		return "", fmt.Errorf("print restored statement: %w", err)
	}
	return restored, nil
}

// ParseTree parses sql in the default dialect and returns the raw tree
// without rewriting or persisting anything.
func (s *Service) ParseTree(sql string) (sqlast.Tree, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, domain.ErrValidation("sql query is required")
	}
	parsed, err := s.codec.Parse(sql, s.defaultDialect)
	if err != nil {
		return nil, err
	}
	return parsed.Tree, nil
}

// issueTokens mints one token per name and persists the batch.
func (s *Service) issueTokens(ctx context.Context, names []string) ([]domain.HashRecord, error) {
	if len(names) == 0 {
		return nil, nil
	}

	records := make([]domain.HashRecord, 0, len(names))
	for _, name := range names {
		token, err := s.tokens.Generate(name)
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		records = append(records, domain.HashRecord{Token: token, ColumnName: name})
	}

	if err := s.repo.InsertMany(ctx, records); err != nil {
		return nil, storeError("insert", err)
	}
	s.logger.Debug("issued tokens", "tokens", domain.Tokens(records))
	return records, nil
}

// lookup fetches the records for tokens, ordered as the tokens are.
func (s *Service) lookup(ctx context.Context, tokens []string) ([]domain.HashRecord, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	found, err := s.repo.LookupByTokens(ctx, tokens)
	if err != nil {
		return nil, storeError("lookup", err)
	}

	byToken := make(map[string]domain.HashRecord, len(found))
	for _, r := range found {
		byToken[r.Token] = r
	}
	records := make([]domain.HashRecord, 0, len(found))
	for _, t := range tokens {
		if r, ok := byToken[t]; ok {
			records = append(records, r)
		}
	}
	s.logger.Debug("resolved tokens", "requested", len(tokens), "found", len(records))
	return records, nil
}

func validateRequest(req Request) (sqlast.Dialect, error) {
	if strings.TrimSpace(req.SQL) == "" {
		return sqlast.Dialect{}, domain.ErrValidation("sql query is required")
	}
	d, ok := sqlast.LookupDialect(req.Database)
	if !ok {
		return sqlast.Dialect{}, domain.ErrValidation("database %q is not supported (supported: %s)",
			req.Database, strings.Join(sqlast.DialectNames(), ", "))
	}
	return d, nil
}

// storeError keeps conflicts and already classified store failures as they
// are and wraps anything else as a StoreError.
func storeError(op string, err error) error {
	var conflict *domain.ConflictError
	var store *domain.StoreError
	if errors.As(err, &conflict) || errors.As(err, &store) {
		return err
	}
	return domain.ErrStore(op, err)
}

func unchanged(sql string, tree sqlast.Tree) *Result {
	return &Result{Query: sql, ModifiedAST: tree, ColumnList: []string{}}
}

func columnNames(records []domain.HashRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ColumnName
	}
	return out
}
