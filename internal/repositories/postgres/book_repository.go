package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/bookrfm/internal/models"
)

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) BulkCreate(ctx context.Context, books []*models.Book) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"books"},
		[]string{"book_id", "title", "author", "genre", "price", "stock_qty"},
		pgx.CopyFromSlice(len(books), func(i int) ([]interface{}, error) {
			return []interface{}{
				books[i].ID,
				books[i].Title,
				books[i].Author,
				books[i].Genre,
				toNumeric(books[i].Price),
				books[i].StockQty,
			}, nil
		}),
	)
	return err
}

func (r *BookRepository) GetAll(ctx context.Context) ([]*models.Book, error) {
	query := `
        SELECT book_id, title, author, genre, price, stock_qty
        FROM books
        ORDER BY book_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		book := &models.Book{}
		var price pgtype.Numeric
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Genre, &price, &book.StockQty); err != nil {
			return nil, err
		}
		if book.Price, err = fromNumeric(price); err != nil {
			return nil, fmt.Errorf("book %s price: %w", book.ID, err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM books").Scan(&count)
	return count, err
}

func (r *BookRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE books CASCADE")
	return err
}
