package service

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/model"
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/ledger"
	"Inkwell/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jinzhu/copier"
	"github.com/samber/lo"
)

// CommentNode 一级评论及按时间升序排列的回复
type CommentNode struct {
	Comment *model.PostComment
	Replies []*model.PostComment
}

type CommentService interface {
	CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error)
	BuildTree(ctx context.Context, postID uint64) ([]*CommentNode, error)
	GetComments(ctx context.Context, postID, viewerID uint64) ([]*dto.CommentDTO, error)
	SetPinned(ctx context.Context, postID, requesterID uint64, commentID *uint64) error
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	SetCommentStatus(ctx context.Context, commentID uint64, status string) error
}

type commentServiceImpl struct {
	commentRepo repository.CommentRepo
	postRepo    repository.PostRepo
	userRepo    repository.UserRepo
	reactionSvc ReactionService
	notifier    NotificationService
}

func NewCommentService(
	commentRepo repository.CommentRepo,
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	reactionSvc ReactionService,
	notifier NotificationService,
) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		reactionSvc: reactionSvc,
		notifier:    notifier,
	}
}

// CreateComment 发表评论；回复一条回复时挂到其所属的一级评论下，并记录被回复的用户
func (s *commentServiceImpl) CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > 1000 {
		return nil, ErrParamInvalid
	}

	post, err := s.postRepo.GetPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	var parentID, replyUserID uint64
	if req.ParentID > 0 {
		parent, err := s.commentRepo.GetCommentByID(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != req.PostID || parent.Status != consts.CommentStatusVisible {
			return nil, ErrParentNotFound
		}

		parentID = parent.ID
		if !parent.IsTopLevel() {
			root, err := s.commentRepo.GetCommentByID(ctx, parent.ParentID)
			if err != nil {
				return nil, err
			}
			if root == nil || root.PostID != req.PostID || root.Status != consts.CommentStatusVisible {
				return nil, ErrParentNotFound
			}
			parentID = root.ID
		}
		replyUserID = parent.UserID
	}

	comment := &model.PostComment{
		PostID:        req.PostID,
		UserID:        userID,
		Content:       content,
		ParentID:      parentID,
		ReplyToUserID: replyUserID,
		Status:        consts.CommentStatusVisible,
	}
	err = withTxRetry(ctx, "create_comment", func() error {
		comment.ID = 0
		err := s.commentRepo.CreateComment(ctx, comment)
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return ErrPostNotFound
		}
		if errors.Is(err, repository.ErrParentMissing) {
			return ErrParentNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	preview := truncateRunes(content, 50)
	s.notifier.Notify(ctx, NotifyParams{
		RecipientID: post.UserID,
		SenderID:    userID,
		Type:        NotifyComment,
		Message:     "评论了你的帖子：" + preview,
		PostID:      post.ID,
		TargetID:    comment.ID,
	})
	// 被回复者就是帖子作者时已收到评论通知
	if replyUserID != 0 && replyUserID != post.UserID {
		s.notifier.Notify(ctx, NotifyParams{
			RecipientID: replyUserID,
			SenderID:    userID,
			Type:        NotifyReply,
			Message:     "回复了你的评论：" + preview,
			PostID:      post.ID,
			TargetID:    comment.ID,
		})
	}

	return s.convertToCommentDTO(comment, nil, nil, false), nil
}

// BuildTree 构建帖子的评论树，隐藏评论不出现在结果中
func (s *commentServiceImpl) BuildTree(ctx context.Context, postID uint64) ([]*CommentNode, error) {
	_, forest, err := s.loadForest(ctx, postID)
	return forest, err
}

func (s *commentServiceImpl) loadForest(ctx context.Context, postID uint64) (*model.Post, []*CommentNode, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if post == nil {
		return nil, nil, ErrPostNotFound
	}

	comments, err := s.commentRepo.ListVisibleByPostID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return post, BuildForest(comments, post.PinnedCommentID), nil
}

// BuildForest 将评论分为一级评论与回复，置顶评论排在最前；父评论不可见的回复被丢弃
func BuildForest(comments []*model.PostComment, pinnedID *uint64) []*CommentNode {
	visible := lo.Filter(comments, func(c *model.PostComment, _ int) bool {
		return c.Status == consts.CommentStatusVisible && !c.IsDeleted
	})
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].CreatedAt.Equal(visible[j].CreatedAt) {
			return visible[i].ID < visible[j].ID
		}
		return visible[i].CreatedAt.Before(visible[j].CreatedAt)
	})

	roots := make([]*CommentNode, 0)
	index := make(map[uint64]*CommentNode)
	for _, c := range visible {
		if c.IsTopLevel() {
			node := &CommentNode{Comment: c, Replies: make([]*model.PostComment, 0)}
			roots = append(roots, node)
			index[c.ID] = node
		}
	}
	for _, c := range visible {
		if c.IsTopLevel() {
			continue
		}
		if parent, ok := index[c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}

	if pinnedID == nil {
		return roots
	}
	_, pos, found := lo.FindIndexOf(roots, func(n *CommentNode) bool { return n.Comment.ID == *pinnedID })
	if !found || pos == 0 {
		return roots
	}
	pinned := roots[pos]
	copy(roots[1:pos+1], roots[:pos])
	roots[0] = pinned
	return roots
}

// GetComments 获取评论树，并附带当前用户的反应状态
func (s *commentServiceImpl) GetComments(ctx context.Context, postID, viewerID uint64) ([]*dto.CommentDTO, error) {
	post, forest, err := s.loadForest(ctx, postID)
	if err != nil {
		return nil, err
	}

	all := make([]*model.PostComment, 0)
	for _, node := range forest {
		all = append(all, node.Comment)
		all = append(all, node.Replies...)
	}

	userIDs := make([]uint64, 0, len(all)*2)
	for _, c := range all {
		userIDs = append(userIDs, c.UserID)
		if c.ReplyToUserID != 0 {
			userIDs = append(userIDs, c.ReplyToUserID)
		}
	}
	users, err := s.userRepo.GetUserByIds(ctx, lo.Uniq(userIDs))
	if err != nil {
		return nil, err
	}
	userMap := lo.KeyBy(users, func(u *model.User) uint64 { return u.ID })

	reactions, err := s.reactionSvc.GetUserReactions(ctx, viewerID, consts.SubjectComment,
		lo.Map(all, func(c *model.PostComment, _ int) uint64 { return c.ID }))
	if err != nil {
		return nil, err
	}

	var pinnedID uint64
	if post.PinnedCommentID != nil {
		pinnedID = *post.PinnedCommentID
	}

	res := make([]*dto.CommentDTO, 0, len(forest))
	for _, node := range forest {
		root := s.convertToCommentDTO(node.Comment, userMap, reactions, node.Comment.ID == pinnedID)
		for _, r := range node.Replies {
			root.Replies = append(root.Replies, s.convertToCommentDTO(r, userMap, reactions, false))
		}
		res = append(res, root)
	}
	return res, nil
}

// SetPinned 设置或取消置顶，仅帖子作者可操作，只能置顶本帖可见的一级评论
func (s *commentServiceImpl) SetPinned(ctx context.Context, postID, requesterID uint64, commentID *uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != requesterID {
		return ErrPinForbidden
	}

	if commentID != nil {
		comment, err := s.commentRepo.GetCommentByID(ctx, *commentID)
		if err != nil {
			return err
		}
		if comment == nil || comment.PostID != postID || !comment.IsTopLevel() || comment.Status != consts.CommentStatusVisible {
			return ErrInvalidPinTarget
		}
	}

	return withTxRetry(ctx, "set_pinned", func() error {
		err := s.postRepo.SetPinnedComment(ctx, postID, commentID)
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return ErrPostNotFound
		}
		if errors.Is(err, repository.ErrPinTargetInvalid) {
			return ErrInvalidPinTarget
		}
		return err
	})
}

// DeleteComment 评论作者或帖子作者可删除评论
func (s *commentServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrPostCommentNotFound
	}

	if comment.UserID != userID {
		post, err := s.postRepo.GetPost(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post == nil || post.UserID != userID {
			return ErrCommentDeleteForbidden
		}
	}

	return withTxRetry(ctx, "delete_comment", func() error {
		err := s.commentRepo.DeleteComment(ctx, comment)
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return ErrPostNotFound
		}
		return err
	})
}

// SetCommentStatus 管理员隐藏或恢复评论
func (s *commentServiceImpl) SetCommentStatus(ctx context.Context, commentID uint64, status string) error {
	if status != consts.CommentStatusVisible && status != consts.CommentStatusHidden {
		return ErrParamInvalid
	}
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrPostCommentNotFound
	}
	if comment.Status == status {
		return nil
	}

	return withTxRetry(ctx, "set_comment_status", func() error {
		err := s.commentRepo.UpdateCommentStatus(ctx, comment, status)
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return ErrPostNotFound
		}
		return err
	})
}

func (s *commentServiceImpl) convertToCommentDTO(
	comment *model.PostComment,
	users map[uint64]*model.User,
	reactions map[uint64]ledger.Bucket,
	pinned bool,
) *dto.CommentDTO {
	dtoItem := &dto.CommentDTO{}
	_ = copier.Copy(dtoItem, comment)
	dtoItem.Stats = *toStatsDTO(comment.Reactions)
	dtoItem.IsPinned = pinned
	dtoItem.Replies = make([]*dto.CommentDTO, 0)

	if b, ok := reactions[comment.ID]; ok {
		t := string(b)
		dtoItem.IsLiked = true
		dtoItem.ReactionType = &t
	}

	if u, ok := users[comment.UserID]; ok {
		dtoItem.Nickname = u.Nickname
		dtoItem.AvatarURL = u.AvatarURL
	}
	if comment.ReplyToUserID != 0 {
		if u, ok := users[comment.ReplyToUserID]; ok {
			dtoItem.ReplyToNickname = u.Nickname
		}
	}

	dtoItem.CreatedAt = comment.CreatedAt.Format("2006-01-02 15:04:05")
	return dtoItem
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
