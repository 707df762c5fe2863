// internal/adapters/out/db/common/sqlutil.go
package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"storefront/internal/domain/apperr"
)

// RowScanner は *sql.Row, *sql.Rows の両方に共通の Scan() メソッドを持つ抽象型です。
type RowScanner interface {
	Scan(dest ...any) error
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pqCode(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// IsUniqueViolation は PostgreSQL 一意制約違反（duplicate key）を検知します。
func IsUniqueViolation(err error) bool {
	code, _ := pqCode(err)
	return code == pgUniqueViolation
}

// IsForeignKeyViolation detects 23503.
func IsForeignKeyViolation(err error) bool {
	code, _ := pqCode(err)
	return code == pgForeignKeyViolation
}

// IsCheckViolation detects 23514 (e.g. stock >= 0).
func IsCheckViolation(err error) bool {
	code, _ := pqCode(err)
	return code == pgCheckViolation
}

// ConstraintName returns the violated constraint, or "".
func ConstraintName(err error) string {
	_, c := pqCode(err)
	return c
}

// Translate maps driver errors that survived repository-level handling to
// the apperr taxonomy. Unknown errors are wrapped as internal.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.Wrap(op, apperr.KindNotFound, "Not found.", err)
	case IsUniqueViolation(err):
		return apperr.Wrap(op, apperr.KindConflict, "Resource already exists.", err)
	case IsForeignKeyViolation(err):
		return apperr.Wrap(op, apperr.KindValidation, "Referenced object does not exist.", err)
	case IsCheckViolation(err):
		return apperr.Wrap(op, apperr.KindValidation, "Value violates a constraint.", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Runner は *sql.DB と *sql.Tx の共通インターフェースです。
type Runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TxKey は context に *sql.Tx を格納するためのキーです。
type TxKey struct{}

// CtxWithTx は ctx に tx を格納して返します。
func CtxWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, TxKey{}, tx)
}

// TxFromCtx は ctx から *sql.Tx を取り出します（無ければ nil）。
func TxFromCtx(ctx context.Context) *sql.Tx {
	if v := ctx.Value(TxKey{}); v != nil {
		if tx, ok := v.(*sql.Tx); ok {
			return tx
		}
	}
	return nil
}

// GetRunner は ctx に Tx があればそれを、無ければ *sql.DB を返します。
func GetRunner(ctx context.Context, db *sql.DB) Runner {
	if tx := TxFromCtx(ctx); tx != nil {
		return tx
	}
	return db
}

// QueryCount は単純な COUNT(*) を実行して返します。
func QueryCount(ctx context.Context, run Runner, query string, args ...any) (int, error) {
	var total int
	if err := run.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// BuildOrderBy はドメインのソート指定を安全な SQL の ORDER BY に変換します。
// allowed はドメイン列名->SQL列名のホワイトリスト。fallback はデフォルト（例: "created_at DESC"）
func BuildOrderBy(column string, allowed map[string]string, order string, fallback string) string {
	sqlCol, ok := allowed[strings.ToLower(strings.TrimSpace(column))]
	if column == "" || !ok || sqlCol == "" {
		if fallback == "" {
			return ""
		}
		return "ORDER BY " + fallback
	}
	dir := strings.ToUpper(order)
	if dir != "ASC" && dir != "DESC" {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", sqlCol, dir)
}

// AppendCond は WHERE 句の配列と引数配列に条件を追加します。
// exprFmt は $n プレースホルダの位置を len(args)+1 に置き換える "%d" を含めます。
func AppendCond(where *[]string, args *[]any, exprFmt string, val any) {
	*where = append(*where, fmt.Sprintf(exprFmt, len(*args)+1))
	*args = append(*args, val)
}

// WhereSQL joins conditions with AND, or returns "".
func WhereSQL(where []string) string {
	if len(where) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(where, " AND ")
}

// FromNullString は sql.NullString を *string に変換します（無効なら nil）。
func FromNullString(ns sql.NullString) *string {
	if ns.Valid {
		v := ns.String
		return &v
	}
	return nil
}

// FromNullTime は sql.NullTime を *time.Time に変換します（無効なら nil）。
func FromNullTime(nt sql.NullTime) *time.Time {
	if nt.Valid {
		v := nt.Time.UTC()
		return &v
	}
	return nil
}

// ToDBText は *string を DB に渡せる値(nil/trim)へ変換します。
func ToDBText(p *string) any {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return s
}

// ToDBTime は *time.Time を DB に渡せる値(nil/UTC)へ変換します。
func ToDBTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
