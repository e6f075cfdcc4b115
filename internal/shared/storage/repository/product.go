package repository

import (
	"context"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage/dbutil"

	"github.com/jmoiron/sqlx"
)

const productColumns = `id, price, featured, category_id, created_at, updated_at`

// CreateProduct 写入商品基础行与翻译
func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	ts := now()
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.insertID(ctx, tx,
			`INSERT INTO products (price, featured, category_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.Price, p.Featured, p.CategoryID, ts, ts)
		if err != nil {
			return err
		}
		if err := s.upsertProductTranslations(ctx, tx, id, p.Translations); err != nil {
			return err
		}
		p.ID = id
		p.CreatedAt = ts
		p.UpdatedAt = ts
		return nil
	})
}

// GetProduct 获取商品基础行、全部翻译与媒体
func (s *Store) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	p := &model.Product{}
	if err := s.get(ctx, s.db, p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id); err != nil {
		return nil, err
	}
	ts := []model.ProductTranslation{}
	if err := s.sel(ctx, s.db, &ts,
		`SELECT product_id, language, name, description FROM product_translations
		 WHERE product_id = $1 ORDER BY language`, id); err != nil {
		return nil, err
	}
	p.Translations = ts

	media, err := s.ListProductMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Media = media
	return p, nil
}

// UpdateProduct 更新商品基础行（价格、推荐、分类）
func (s *Store) UpdateProduct(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = now()
	return s.execOne(ctx, s.db,
		`UPDATE products SET price = $1, featured = $2, category_id = $3, updated_at = $4 WHERE id = $5`,
		p.Price, p.Featured, p.CategoryID, p.UpdatedAt, p.ID)
}

// DeleteProduct 删除商品及翻译、媒体关联、购物车行，返回原先关联的资源 ID
func (s *Store) DeleteProduct(ctx context.Context, id int64) ([]int64, error) {
	var assetIDs []int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		assetIDs = []int64{}
		if err := s.sel(ctx, tx, &assetIDs,
			`SELECT asset_id FROM product_media WHERE product_id = $1 ORDER BY asset_id`, id); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM product_media WHERE product_id = $1`,
			`DELETE FROM cart_items WHERE product_id = $1`,
			`DELETE FROM product_translations WHERE product_id = $1`,
		} {
			if _, err := s.exec(ctx, tx, q, id); err != nil {
				return err
			}
		}
		return s.execOne(ctx, tx, `DELETE FROM products WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return assetIDs, nil
}

// ListProducts 管理后台分页列表（含全部翻译）
func (s *Store) ListProducts(ctx context.Context, page model.Page) ([]*model.Product, int, error) {
	total, err := s.count(ctx, s.db, `SELECT COUNT(*) FROM products`)
	if err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	products := []*model.Product{}
	if err := s.sel(ctx, s.db, &products,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset()); err != nil {
		return nil, 0, err
	}
	if len(products) == 0 {
		return products, total, nil
	}

	c := &dbutil.Conditions{}
	ids := make([]int64, len(products))
	byID := make(map[int64]*model.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		p.Translations = []model.ProductTranslation{}
		byID[p.ID] = p
	}
	ts := []model.ProductTranslation{}
	if err := s.sel(ctx, s.db, &ts,
		`SELECT product_id, language, name, description FROM product_translations
		 WHERE product_id IN (`+inArgs(c, ids)+`) ORDER BY product_id, language`, c.Args()...); err != nil {
		return nil, 0, err
	}
	for _, t := range ts {
		byID[t.ProductID].Translations = append(byID[t.ProductID].Translations, t)
	}
	return products, total, nil
}

// UpsertProductTranslations 按 (product_id, language) 插入或覆盖翻译，不删除未提及的语言
func (s *Store) UpsertProductTranslations(ctx context.Context, productID int64, ts []model.ProductTranslation) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return s.upsertProductTranslations(ctx, tx, productID, ts)
	})
}

func (s *Store) upsertProductTranslations(ctx context.Context, tx *sqlx.Tx, productID int64, ts []model.ProductTranslation) error {
	query := `INSERT INTO product_translations (product_id, language, name, description)
	          VALUES ($1, $2, $3, $4) ` +
		s.dialect.UpsertConflict("product_id, language", []string{
			"name = EXCLUDED.name",
			"description = EXCLUDED.description",
		})
	for _, t := range ts {
		if _, err := s.exec(ctx, tx, query, productID, t.Language, t.Name, t.Description); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// 店面视图（按语言展开，缺失翻译回退默认语言）
// ============================================================================

// localizedFrom 构造店面查询的 FROM + JOIN 部分，语言参数先于 WHERE 条件编号
func localizedFrom(c *dbutil.Conditions, lang, defaultLang string) string {
	return ` FROM products p
	 LEFT JOIN product_translations t ON t.product_id = p.id AND t.language = ` + c.Next(lang) + `
	 LEFT JOIN product_translations d ON d.product_id = p.id AND d.language = ` + c.Next(defaultLang) + `
	 LEFT JOIN category_translations ct ON ct.category_id = p.category_id AND ct.language = ` + c.Next(lang) + `
	 LEFT JOIN category_translations cd ON cd.category_id = p.category_id AND cd.language = ` + c.Next(defaultLang)
}

const localizedSelect = `SELECT p.id,
        COALESCE(t.name, d.name, '') AS name,
        COALESCE(t.description, d.description, '') AS description,
        p.price, p.featured, p.category_id,
        COALESCE(ct.name, cd.name) AS category_name,
        (SELECT a.url FROM product_media pm JOIN media_assets a ON a.id = pm.asset_id
         WHERE pm.product_id = p.id ORDER BY pm.display_order, pm.asset_id LIMIT 1) AS thumbnail,
        p.created_at`

// ListLocalizedProducts 店面商品列表：分页查询 + 独立 COUNT 查询
func (s *Store) ListLocalizedProducts(ctx context.Context, filter model.ProductFilter) ([]*model.LocalizedProduct, int, error) {
	c := &dbutil.Conditions{}
	from := localizedFrom(c, filter.Language, filter.DefaultLanguage)
	if filter.CategoryID != nil {
		c.Add("p.category_id = ?", *filter.CategoryID)
	}
	if filter.Featured != nil {
		c.Add("p.featured = ?", *filter.Featured)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		c.Add("(LOWER(COALESCE(t.name, d.name, '')) LIKE LOWER(?) OR LOWER(COALESCE(t.description, d.description, '')) LIKE LOWER(?))",
			like, like)
	}

	total, err := s.count(ctx, s.db, `SELECT COUNT(*)`+from+c.Where(), c.Args()...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	lc := c.Clone()
	query := localizedSelect + from + lc.Where() +
		` ORDER BY p.created_at DESC, p.id DESC LIMIT ` + lc.Next(page.Limit) + ` OFFSET ` + lc.Next(page.Offset())

	products := []*model.LocalizedProduct{}
	if err := s.sel(ctx, s.db, &products, query, lc.Args()...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetLocalizedProduct 店面商品详情（含全部媒体）
func (s *Store) GetLocalizedProduct(ctx context.Context, id int64, lang, defaultLang string) (*model.LocalizedProduct, error) {
	c := &dbutil.Conditions{}
	from := localizedFrom(c, lang, defaultLang)
	c.Add("p.id = ?", id)

	p := &model.LocalizedProduct{}
	if err := s.get(ctx, s.db, p, localizedSelect+from+c.Where(), c.Args()...); err != nil {
		return nil, err
	}
	media, err := s.ListProductMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Media = media
	return p, nil
}
