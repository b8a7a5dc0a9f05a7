package database

// schema creates every table the service needs.  Child tables reference
// users with ON DELETE CASCADE so removing an account removes its requests,
// transactions, favorites, history, reviews and tokens.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    credits BIGINT NOT NULL DEFAULT 0,
    role ENUM('user','admin') NOT NULL DEFAULT 'user',
    avatar TEXT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL,
    token_hash CHAR(64) NOT NULL UNIQUE,
    expires_at DATETIME NOT NULL,
    revoked_at DATETIME NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS credit_requests (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL,
    transaction_ref VARCHAR(255) NOT NULL,
    amount_paid DECIMAL(10,2) NOT NULL,
    package_credits BIGINT NOT NULL,
    package_price DECIMAL(10,2) NOT NULL,
    package_description VARCHAR(255) NOT NULL DEFAULT '',
    payment_date DATETIME NOT NULL,
    status ENUM('Pending','Approved','Rejected') NOT NULL DEFAULT 'Pending',
    admin_note TEXT NULL,
    created_at DATETIME NOT NULL,
    resolved_at DATETIME NULL,
    INDEX idx_credit_requests_user (user_id, created_at),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS transactions (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL,
    name VARCHAR(255) NOT NULL,
    credits_purchased BIGINT NOT NULL,
    amount_paid DECIMAL(10,2) NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'Completed',
    created_at DATETIME NOT NULL,
    INDEX idx_transactions_user (user_id, created_at),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS favorites (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL,
    image_url MEDIUMTEXT NOT NULL,
    image_url_hash CHAR(64) NOT NULL,
    prompt TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    UNIQUE KEY uniq_favorite_user_image (user_id, image_url_hash),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS generation_history (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL,
    prompt TEXT NOT NULL,
    style VARCHAR(32) NOT NULL,
    quality VARCHAR(32) NOT NULL,
    aspect_ratio VARCHAR(8) NOT NULL,
    created_at DATETIME NOT NULL,
    INDEX idx_generation_history_user (user_id, created_at),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS gallery_images (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    image_url TEXT NOT NULL,
    title VARCHAR(255) NOT NULL,
    style VARCHAR(32) NOT NULL,
    added_by BIGINT UNSIGNED NULL,
    seed_key VARCHAR(32) NULL,
    created_at DATETIME NOT NULL,
    UNIQUE KEY uq_gallery_seed (seed_key),
    FOREIGN KEY (added_by) REFERENCES users(id) ON DELETE SET NULL
)`,
	`CREATE TABLE IF NOT EXISTS reviews (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL UNIQUE,
    rating TINYINT UNSIGNED NOT NULL,
    comment TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS support_messages (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NULL,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL,
    subject VARCHAR(255) NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    issue_type VARCHAR(64) NOT NULL,
    status ENUM('Pending','Resolved') NOT NULL DEFAULT 'Pending',
    created_at DATETIME NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
)`,
	`CREATE TABLE IF NOT EXISTS admin_activity (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    admin_id BIGINT UNSIGNED NOT NULL,
    admin_email VARCHAR(255) NOT NULL,
    action VARCHAR(64) NOT NULL,
    target_user_id BIGINT UNSIGNED NULL,
    target_name VARCHAR(255) NOT NULL DEFAULT '',
    details TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    INDEX idx_admin_activity_created (created_at)
)`,
}
