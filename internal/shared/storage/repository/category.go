package repository

import (
	"context"
	"time"

	"shop-admin/internal/shared/model"

	"github.com/jmoiron/sqlx"
)

// CreateCategory 创建分类并写入翻译
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	ts := now()
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.insertID(ctx, tx,
			`INSERT INTO categories (created_at, updated_at) VALUES ($1, $2)`, ts, ts)
		if err != nil {
			return err
		}
		if err := s.upsertCategoryTranslations(ctx, tx, id, c.Translations); err != nil {
			return err
		}
		c.ID = id
		c.CreatedAt = ts
		c.UpdatedAt = ts
		return nil
	})
}

// GetCategory 获取分类及全部翻译
func (s *Store) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	c := &model.Category{}
	if err := s.get(ctx, s.db, c, `SELECT id, created_at, updated_at FROM categories WHERE id = $1`, id); err != nil {
		return nil, err
	}
	ts := []model.CategoryTranslation{}
	if err := s.sel(ctx, s.db, &ts,
		`SELECT category_id, language, name, description FROM category_translations
		 WHERE category_id = $1 ORDER BY language`, id); err != nil {
		return nil, err
	}
	c.Translations = ts
	return c, nil
}

// ListCategories 列出全部分类及翻译（管理后台）
func (s *Store) ListCategories(ctx context.Context) ([]*model.Category, error) {
	cats := []*model.Category{}
	if err := s.sel(ctx, s.db, &cats, `SELECT id, created_at, updated_at FROM categories ORDER BY id`); err != nil {
		return nil, err
	}
	ts := []model.CategoryTranslation{}
	if err := s.sel(ctx, s.db, &ts,
		`SELECT category_id, language, name, description FROM category_translations
		 ORDER BY category_id, language`); err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.Category, len(cats))
	for _, c := range cats {
		c.Translations = []model.CategoryTranslation{}
		byID[c.ID] = c
	}
	for _, t := range ts {
		if c, ok := byID[t.CategoryID]; ok {
			c.Translations = append(c.Translations, t)
		}
	}
	return cats, nil
}

// ListLocalizedCategories 按语言列出分类，缺失翻译回退到默认语言
func (s *Store) ListLocalizedCategories(ctx context.Context, lang, defaultLang string) ([]*model.LocalizedCategory, error) {
	cats := []*model.LocalizedCategory{}
	err := s.sel(ctx, s.db, &cats,
		`SELECT c.id,
		        COALESCE(t.name, d.name, '') AS name,
		        COALESCE(t.description, d.description, '') AS description,
		        (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id) AS product_count
		 FROM categories c
		 LEFT JOIN category_translations t ON t.category_id = c.id AND t.language = $1
		 LEFT JOIN category_translations d ON d.category_id = c.id AND d.language = $2
		 ORDER BY name, c.id`, lang, defaultLang)
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// UpsertCategoryTranslations 按 (category_id, language) 插入或覆盖翻译，不删除未提及的语言
func (s *Store) UpsertCategoryTranslations(ctx context.Context, categoryID int64, ts []model.CategoryTranslation) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return s.upsertCategoryTranslations(ctx, tx, categoryID, ts)
	})
}

func (s *Store) upsertCategoryTranslations(ctx context.Context, tx *sqlx.Tx, categoryID int64, ts []model.CategoryTranslation) error {
	query := `INSERT INTO category_translations (category_id, language, name, description)
	          VALUES ($1, $2, $3, $4) ` +
		s.dialect.UpsertConflict("category_id, language", []string{
			"name = EXCLUDED.name",
			"description = EXCLUDED.description",
		})
	for _, t := range ts {
		if _, err := s.exec(ctx, tx, query, categoryID, t.Language, t.Name, t.Description); err != nil {
			return err
		}
	}
	return nil
}

// TouchCategory 更新分类的 updated_at
func (s *Store) TouchCategory(ctx context.Context, id int64, at time.Time) error {
	return s.execOne(ctx, s.db, `UPDATE categories SET updated_at = $1 WHERE id = $2`, at.UTC(), id)
}

// DeleteCategory 删除分类；关联商品的 category_id 置空
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.exec(ctx, tx, `UPDATE products SET category_id = NULL WHERE category_id = $1`, id); err != nil {
			return err
		}
		if _, err := s.exec(ctx, tx, `DELETE FROM category_translations WHERE category_id = $1`, id); err != nil {
			return err
		}
		return s.execOne(ctx, tx, `DELETE FROM categories WHERE id = $1`, id)
	})
}
